package grpccas

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/reservecid/cid"
	"xdao.co/reservecid/storage"
	"xdao.co/reservecid/storage/localfs"
	"xdao.co/reservecid/storage/testkit"
)

func newBufClient(t *testing.T, cas storage.CAS) *Client {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterCASServer(srv, &Server{CAS: cas})
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	dialer := func(ctx context.Context, s string) (net.Conn, error) { return lis.Dial() }
	client, err := Dial("bufnet", DialOptions{
		Extra: []grpc.DialOption{grpc.WithContextDialer(dialer)},
	})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	client.Timeout = 2 * time.Second
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func newLocal(t *testing.T) storage.CAS {
	t.Helper()
	cas, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatalf("localfs.New: %v", err)
	}
	return cas
}

func TestGRPCCAS_Conformance(t *testing.T) {
	testkit.RunCASConformance(t, func(t *testing.T) storage.CAS {
		return newBufClient(t, newLocal(t))
	})
}

func TestGRPCCAS_LocalFS_RoundTrip(t *testing.T) {
	client := newBufClient(t, newLocal(t))

	payload := []byte("hello grpccas")
	id, addr, err := storage.ReserveOf(client, payload)
	if err != nil {
		t.Fatalf("ReserveOf: %v", err)
	}
	if !client.Has(id) {
		t.Fatalf("Has: expected true")
	}
	got, err := storage.GetByReserve(client, addr)
	if err != nil {
		t.Fatalf("GetByReserve: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("payload mismatch")
	}
}

// lyingCAS returns the wrong bytes for every identifier.
type lyingCAS struct{ storage.CAS }

func (l lyingCAS) Get(cid.CID) ([]byte, error) { return []byte("tampered"), nil }

func TestGRPCCAS_ServerDetectsTamperedBlock(t *testing.T) {
	inner := newLocal(t)
	client := newBufClient(t, lyingCAS{inner})
	id, err := client.Put([]byte("honest"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := client.Get(id); err != storage.ErrCIDMismatch {
		t.Fatalf("Get: got %v want ErrCIDMismatch", err)
	}
}

func TestGRPCCAS_ServerRejectsBadIdentifier(t *testing.T) {
	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterCASServer(srv, &Server{CAS: newLocal(t)})
	go func() {
		_ = srv.Serve(lis)
	}()
	defer srv.Stop()

	cc, err := grpc.DialContext(
		context.Background(),
		"bufnet",
		grpc.WithContextDialer(func(ctx context.Context, s string) (net.Conn, error) { return lis.Dial() }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("DialContext: %v", err)
	}
	defer cc.Close()

	raw := NewCASClient(cc)
	_, err = raw.Get(context.Background(), wrapperspb.String("not-a-cid"))
	if mapRPC(err) != storage.ErrInvalidCID {
		t.Fatalf("Get(bad): got %v want ErrInvalidCID", err)
	}
	_, err = raw.Get(context.Background(), wrapperspb.String(storage.IdentifierFor([]byte("absent")).String()))
	if mapRPC(err) != storage.ErrNotFound {
		t.Fatalf("Get(absent): got %v want ErrNotFound", err)
	}
}

func TestGRPCCAS_MissingStore(t *testing.T) {
	s := &Server{}
	if _, err := s.Put(context.Background(), wrapperspb.Bytes([]byte("x"))); err == nil {
		t.Fatalf("expected FailedPrecondition")
	}
}

func TestGRPCCAS_ServiceDescRoutesThroughInterceptor(t *testing.T) {
	var (
		mu      sync.Mutex
		methods []string
	)
	record := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		mu.Lock()
		methods = append(methods, info.FullMethod)
		mu.Unlock()
		return handler(ctx, req)
	}
	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer(grpc.UnaryInterceptor(record))
	RegisterCASServer(srv, &Server{CAS: newLocal(t)})
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	cc, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, s string) (net.Conn, error) { return lis.Dial() }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("DialContext: %v", err)
	}
	t.Cleanup(func() { _ = cc.Close() })
	raw := NewCASClient(cc)
	ctx := context.Background()

	block := []byte("routed block")
	put, err := raw.Put(ctx, wrapperspb.Bytes(block))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if put.GetValue() != storage.IdentifierFor(block).String() {
		t.Fatalf("Put answered %q", put.GetValue())
	}

	// V0 text of the same digest names the same block.
	v0, err := cid.NewV0(storage.IdentifierFor(block).Digest())
	if err != nil {
		t.Fatalf("NewV0: %v", err)
	}
	has, err := raw.Has(ctx, wrapperspb.String(v0.String()))
	if err != nil || !has.GetValue() {
		t.Fatalf("Has(v0) = %v, %v", has.GetValue(), err)
	}
	got, err := raw.Get(ctx, wrapperspb.String(v0.String()))
	if err != nil || string(got.GetValue()) != string(block) {
		t.Fatalf("Get(v0) = %q, %v", got.GetValue(), err)
	}

	want := []string{
		"/xdao.reservecid.storage.grpccas.v1.CAS/Put",
		"/xdao.reservecid.storage.grpccas.v1.CAS/Has",
		"/xdao.reservecid.storage.grpccas.v1.CAS/Get",
	}
	mu.Lock()
	defer mu.Unlock()
	if len(methods) != len(want) {
		t.Fatalf("intercepted %v", methods)
	}
	for i := range want {
		if methods[i] != want[i] {
			t.Fatalf("intercepted %v, want %v", methods, want)
		}
	}
}
