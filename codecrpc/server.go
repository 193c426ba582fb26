// Package codecrpc serves the identifier, reserve-address and locator codecs
// over gRPC using protobuf well-known types only.
package codecrpc

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/reservecid/cid"
	"xdao.co/reservecid/locator"
	"xdao.co/reservecid/reserve"
)

// Server implements CodecServer on top of the codec packages.
type Server struct {
	UnimplementedCodecServer
}

var _ CodecServer = (*Server)(nil)

// NormalizeCID parses any accepted identifier text and returns its
// canonical text form.
func (s *Server) NormalizeCID(_ context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	id, err := cid.Parse(in.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	text, err := id.Encode()
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.String(text), nil
}

func (s *Server) AddressFromCID(_ context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	id, err := cid.Parse(in.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	addr, err := reserve.AddressFromIdentifier(id)
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.String(addr), nil
}

// CIDFromAddress returns the V0 identifier carried by a reserve address.
func (s *Server) CIDFromAddress(_ context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	id, err := reserve.IdentifierFromAddress(in.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.String(id.String()), nil
}

// ResolveURL parses "url", substitutes "vars" (string values) and then
// "asset_id" into the path and returns the resolved text.
func (s *Server) ResolveURL(_ context.Context, in *structpb.Struct) (*wrapperspb.StringValue, error) {
	fields := in.GetFields()
	text, err := requiredString(fields, "url")
	if err != nil {
		return nil, err
	}
	u, err := locator.Parse(text)
	if err != nil {
		return nil, toStatus(err)
	}
	if v, ok := fields["vars"]; ok {
		vars, err := stringMap(v)
		if err != nil {
			return nil, err
		}
		u = locator.ResolveTemplate(u, vars)
	}
	if v, ok := fields["asset_id"]; ok {
		id, err := assetID(v)
		if err != nil {
			return nil, err
		}
		u = locator.ResolveAssetTemplate(u, id)
	}
	out, err := u.Encode()
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.String(out), nil
}

func (s *Server) ExpandReserve(_ context.Context, in *structpb.Struct) (*wrapperspb.StringValue, error) {
	fields := in.GetFields()
	template, err := requiredString(fields, "template")
	if err != nil {
		return nil, err
	}
	addr, err := requiredString(fields, "reserve")
	if err != nil {
		return nil, err
	}
	out, err := locator.ExpandReserve(template, addr)
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.String(out), nil
}

func requiredString(fields map[string]*structpb.Value, name string) (string, error) {
	v, ok := fields[name]
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "missing field %q", name)
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "field %q must be a string", name)
	}
	return s.StringValue, nil
}

func stringMap(v *structpb.Value) (map[string]string, error) {
	st := v.GetStructValue()
	if st == nil {
		return nil, status.Error(codes.InvalidArgument, `field "vars" must be an object`)
	}
	out := make(map[string]string, len(st.GetFields()))
	for k, fv := range st.GetFields() {
		s, ok := fv.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "vars.%s must be a string", k)
		}
		out[k] = s.StringValue
	}
	return out, nil
}

// assetID accepts a non-negative integral number, or a decimal string for
// IDs above 2^53.
func assetID(v *structpb.Value) (uint64, error) {
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		f := k.NumberValue
		if f < 0 || f != math.Trunc(f) || f > 1<<53 {
			return 0, status.Errorf(codes.InvalidArgument, "asset_id %v is not an exact unsigned integer", f)
		}
		return uint64(f), nil
	case *structpb.Value_StringValue:
		id, err := strconv.ParseUint(k.StringValue, 10, 64)
		if err != nil {
			return 0, status.Errorf(codes.InvalidArgument, "asset_id: %v", err)
		}
		return id, nil
	default:
		return 0, status.Error(codes.InvalidArgument, fmt.Sprintf("asset_id has unsupported type %T", k))
	}
}
