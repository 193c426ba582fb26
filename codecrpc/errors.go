package codecrpc

import (
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"xdao.co/reservecid/errs"
)

// Codec errors travel as InvalidArgument with the message
// "<Kind> <RuleID>: <text>". The full cause chain rides along as a
// structpb.Struct detail:
//
//	{"layers": [{"kind", "rule", "message"}, ...], "cause": "<innermost non-codec error>"}

func toStatus(err error) error {
	var e *errs.Error
	if !errors.As(err, &e) {
		return status.Error(codes.Internal, err.Error())
	}
	st := status.New(codes.InvalidArgument, string(e.Kind)+" "+e.RuleID+": "+err.Error())
	if detail, derr := chainDetail(e); derr == nil {
		if withDetail, werr := st.WithDetails(detail); werr == nil {
			st = withDetail
		}
	}
	return st.Err()
}

func chainDetail(e *errs.Error) (*structpb.Struct, error) {
	var layers []any
	var tail string
	for cur := error(e); cur != nil; {
		layer, ok := cur.(*errs.Error)
		if !ok {
			tail = cur.Error()
			break
		}
		layers = append(layers, map[string]any{
			"kind":    string(layer.Kind),
			"rule":    layer.RuleID,
			"message": layer.Message,
		})
		cur = layer.Cause
	}
	fields := map[string]any{"layers": layers}
	if tail != "" {
		fields["cause"] = tail
	}
	return structpb.NewStruct(fields)
}

// fromStatus maps a status error back to *errs.Error when it carries a
// codec error; other errors are returned unchanged.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.InvalidArgument {
		return err
	}
	head, msg, ok := strings.Cut(st.Message(), ": ")
	if !ok {
		return err
	}
	kind, rule, ok := strings.Cut(head, " ")
	if !ok || !knownKind(errs.Kind(kind)) {
		return err
	}
	for _, d := range st.Details() {
		if s, ok := d.(*structpb.Struct); ok {
			if chained := fromDetail(s); chained != nil {
				return chained
			}
		}
	}
	return &errs.Error{Kind: errs.Kind(kind), RuleID: rule, Message: msg}
}

// fromDetail rebuilds the cause chain; it returns nil if s is malformed.
func fromDetail(s *structpb.Struct) error {
	layers := s.GetFields()["layers"].GetListValue().GetValues()
	if len(layers) == 0 {
		return nil
	}
	var cause error
	if tail := s.GetFields()["cause"].GetStringValue(); tail != "" {
		cause = errors.New(tail)
	}
	for i := len(layers) - 1; i >= 0; i-- {
		f := layers[i].GetStructValue().GetFields()
		kind := errs.Kind(f["kind"].GetStringValue())
		if !knownKind(kind) {
			return nil
		}
		cause = &errs.Error{
			Kind:    kind,
			RuleID:  f["rule"].GetStringValue(),
			Message: f["message"].GetStringValue(),
			Cause:   cause,
		}
	}
	return cause
}

func knownKind(k errs.Kind) bool {
	for _, known := range errs.Kinds {
		if k == known {
			return true
		}
	}
	return false
}
