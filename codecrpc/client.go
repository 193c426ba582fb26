package codecrpc

import (
	"context"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client is a typed wrapper over CodecClient. Codec failures come back as
// *errs.Error.
type Client struct {
	rpc CodecClient
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{rpc: NewCodecClient(cc)}
}

func (c *Client) NormalizeCID(ctx context.Context, text string) (string, error) {
	return unwrap(c.rpc.NormalizeCID(ctx, wrapperspb.String(text)))
}

func (c *Client) AddressFromCID(ctx context.Context, text string) (string, error) {
	return unwrap(c.rpc.AddressFromCID(ctx, wrapperspb.String(text)))
}

func (c *Client) CIDFromAddress(ctx context.Context, address string) (string, error) {
	return unwrap(c.rpc.CIDFromAddress(ctx, wrapperspb.String(address)))
}

// ResolveURL resolves url with vars and, when assetID is non-nil, {id}.
func (c *Client) ResolveURL(ctx context.Context, url string, assetID *uint64, vars map[string]string) (string, error) {
	fields := map[string]*structpb.Value{"url": structpb.NewStringValue(url)}
	if assetID != nil {
		fields["asset_id"] = structpb.NewStringValue(strconv.FormatUint(*assetID, 10))
	}
	if len(vars) > 0 {
		vs := make(map[string]*structpb.Value, len(vars))
		for k, v := range vars {
			vs[k] = structpb.NewStringValue(v)
		}
		fields["vars"] = structpb.NewStructValue(&structpb.Struct{Fields: vs})
	}
	return unwrap(c.rpc.ResolveURL(ctx, &structpb.Struct{Fields: fields}))
}

func (c *Client) ExpandReserve(ctx context.Context, template, address string) (string, error) {
	in := &structpb.Struct{Fields: map[string]*structpb.Value{
		"template": structpb.NewStringValue(template),
		"reserve":  structpb.NewStringValue(address),
	}}
	return unwrap(c.rpc.ExpandReserve(ctx, in))
}

func unwrap(out *wrapperspb.StringValue, err error) (string, error) {
	if err != nil {
		return "", fromStatus(err)
	}
	return out.GetValue(), nil
}
