package codecrpc

import (
	"context"
	"net"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"xdao.co/reservecid/errs"
	"xdao.co/reservecid/locator"
)

const (
	v0Text      = "QmRBF87nYwcWx9TSvVMkR4sw92m9h3wKQ8YT1R98HUagch"
	rawBase58   = "zb2rhZUscAznnsXuLJzub836yGPuJUeQYG4JuLXK62i3kYrpR"
	rawBase32   = "bafkreibkfivcukrkfivcukrkfivcukrkfivcukrkfivcukrkfivcukrkfi"
	reserveFill = "FIVCUKRKFIVCUKRKFIVCUKRKFIVCUKRKFIVCUKRKFIVCUKRKFIVLTGDE2I"
)

func newTestClient(t *testing.T, log logrus.FieldLogger) (*Client, CodecClient) {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer(grpc.UnaryInterceptor(LoggingInterceptor(log)))
	RegisterCodecServer(srv, &Server{})
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	cc, err := grpc.DialContext(
		context.Background(),
		"bufnet",
		grpc.WithContextDialer(func(ctx context.Context, s string) (net.Conn, error) { return lis.Dial() }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cc.Close() })
	return NewClient(cc), NewCodecClient(cc)
}

func TestCodecRPC_Identifiers(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	client, _ := newTestClient(t, logger)
	ctx := context.Background()

	got, err := client.NormalizeCID(ctx, rawBase58)
	require.NoError(t, err)
	assert.Equal(t, rawBase32, got)

	got, err = client.NormalizeCID(ctx, "BAFKREIBKFIVCUKRKFIVCUKRKFIVCUKRKFIVCUKRKFIVCUKRKFIVCUKRKFI")
	require.NoError(t, err)
	assert.Equal(t, rawBase32, got)

	addr, err := client.AddressFromCID(ctx, rawBase32)
	require.NoError(t, err)
	assert.Equal(t, reserveFill, addr)

	id, err := client.CIDFromAddress(ctx, reserveFill)
	require.NoError(t, err)
	assert.Equal(t, v0Text, id)
}

func TestCodecRPC_URLs(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	client, _ := newTestClient(t, logger)
	ctx := context.Background()

	asset := uint64(123)
	got, err := client.ResolveURL(ctx, "template-ipfs://"+v0Text+"/metadata/{id}", &asset, nil)
	require.NoError(t, err)
	assert.Equal(t, "template-ipfs://"+v0Text+"/metadata/123", got)

	got, err = client.ResolveURL(ctx, "ipfs://"+v0Text+"/{lang}/{id}.json", &asset, map[string]string{"lang": "en"})
	require.NoError(t, err)
	assert.Equal(t, "ipfs://"+v0Text+"/en/123.json", got)

	got, err = client.ExpandReserve(ctx, "template-ipfs://{ipfscid:0:dag-pb:reserve:sha2-256}/{id}", reserveFill)
	require.NoError(t, err)
	assert.Equal(t, "template-ipfs://"+v0Text+"/{id}", got)
}

func TestCodecRPC_ErrorsMapBackToKinds(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	client, _ := newTestClient(t, logger)
	ctx := context.Background()

	_, err := client.NormalizeCID(ctx, "Qmshort")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindInvalidCID), "got %v", err)
	assert.Regexp(t, `^RCID-CID-\d{3}$`, errs.RuleID(err))

	_, err = client.CIDFromAddress(ctx, reserveFill[:57])
	assert.True(t, errs.IsKind(err, errs.KindInvalidReserveAddress), "got %v", err)

	_, err = client.ResolveURL(ctx, "ipfs://", nil, nil)
	assert.True(t, errs.IsKind(err, errs.KindInvalidURL), "got %v", err)

	_, err = client.ExpandReserve(ctx, "template-ipfs://nothing-here", reserveFill)
	assert.True(t, errs.IsKind(err, errs.KindInvalidURL), "got %v", err)

	require.NotEmpty(t, hook.AllEntries())
	last := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, last.Level)
	assert.Equal(t, "/xdao.reservecid.codec.v1.Codec/ExpandReserve", last.Data["method"])
	assert.Equal(t, codes.InvalidArgument.String(), last.Data["code"])
}

func TestCodecRPC_ErrorsKeepCauseChain(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	client, _ := newTestClient(t, logger)
	ctx := context.Background()

	_, local := locator.Parse("ipfs://Qmnope/x")
	require.Error(t, local)

	_, err := client.ResolveURL(ctx, "ipfs://Qmnope/x", nil, nil)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindInvalidURL), "got %v", err)
	assert.True(t, errs.IsKind(err, errs.KindInvalidCID), "got %v", err)
	assert.Equal(t, "RCID-URL-004", errs.RuleID(err))
	assert.Equal(t, local.Error(), err.Error())

	_, err = client.CIDFromAddress(ctx, reserveFill[:10]+"1"+reserveFill[11:])
	assert.True(t, errs.IsKind(err, errs.KindInvalidReserveAddress), "got %v", err)
	assert.True(t, errs.IsKind(err, errs.KindInvalidCharacter), "got %v", err)
}

func TestFromStatus_WithoutDetailUsesOuterKind(t *testing.T) {
	err := fromStatus(status.Error(codes.InvalidArgument, "InvalidURL RCID-URL-004: invalid content identifier"))
	assert.True(t, errs.IsKind(err, errs.KindInvalidURL))
	assert.False(t, errs.IsKind(err, errs.KindInvalidCID))
	assert.Equal(t, "RCID-URL-004", errs.RuleID(err))
}

func TestCodecRPC_MalformedStructs(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	_, raw := newTestClient(t, logger)
	ctx := context.Background()

	cases := map[string]map[string]any{
		"missing-url":     {},
		"url-not-string":  {"url": 5},
		"negative-asset":  {"url": "ipfs://" + v0Text, "asset_id": -1},
		"fraction-asset":  {"url": "ipfs://" + v0Text, "asset_id": 1.5},
		"bad-asset-text":  {"url": "ipfs://" + v0Text, "asset_id": "x"},
		"vars-not-object": {"url": "ipfs://" + v0Text, "vars": "x"},
		"var-not-string":  {"url": "ipfs://" + v0Text, "vars": map[string]any{"a": 1}},
	}
	for name, in := range cases {
		st, err := structpb.NewStruct(in)
		require.NoError(t, err, name)
		_, err = raw.ResolveURL(ctx, st)
		assert.Equal(t, codes.InvalidArgument, status.Code(err), name)
	}

	st, err := structpb.NewStruct(map[string]any{"template": "x"})
	require.NoError(t, err)
	_, err = raw.ExpandReserve(ctx, st)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestFromStatus_PassesThroughOtherErrors(t *testing.T) {
	plain := status.Error(codes.Unavailable, "down")
	assert.Equal(t, plain, fromStatus(plain))
	odd := status.Error(codes.InvalidArgument, "Whatever RCID-X-1: nope")
	assert.Equal(t, odd, fromStatus(odd))
	assert.Equal(t, codes.Internal, status.Code(toStatus(assert.AnError)))
}
