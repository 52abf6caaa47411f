// Package onnx loads evaluation models and enforces the competition's
// parameter budget. Parameter counting walks the raw ONNX protobuf with
// protowire rather than pulling in generated bindings: only five message
// types and a handful of field numbers matter.
package onnx

import (
	"fmt"
	"os"

	"google.golang.org/protobuf/encoding/protowire"
)

// ONNX protobuf field numbers used by the counter.
const (
	fieldModelGraph       = 7 // ModelProto.graph
	fieldGraphNode        = 1 // GraphProto.node
	fieldGraphInitializer = 5 // GraphProto.initializer
	fieldNodeOpType       = 4 // NodeProto.op_type
	fieldNodeAttribute    = 5 // NodeProto.attribute
	fieldAttributeTensor  = 5 // AttributeProto.t
	fieldTensorDims       = 1 // TensorProto.dims
)

// CountParameters sums the element counts of every weight tensor in the
// model: all graph initializers plus tensors embedded in Constant nodes.
func CountParameters(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read model: %w", err)
	}
	var total uint64
	err = eachField(data, func(num protowire.Number, payload []byte) error {
		if num != fieldModelGraph {
			return nil
		}
		return countGraph(payload, &total)
	})
	if err != nil {
		return 0, fmt.Errorf("parse model %s: %w", path, err)
	}
	return total, nil
}

func countGraph(graph []byte, total *uint64) error {
	return eachField(graph, func(num protowire.Number, payload []byte) error {
		switch num {
		case fieldGraphInitializer:
			n, err := tensorElements(payload)
			if err != nil {
				return err
			}
			*total += n
		case fieldGraphNode:
			return countConstantNode(payload, total)
		}
		return nil
	})
}

func countConstantNode(node []byte, total *uint64) error {
	opType := ""
	var attrs [][]byte
	err := eachField(node, func(num protowire.Number, payload []byte) error {
		switch num {
		case fieldNodeOpType:
			opType = string(payload)
		case fieldNodeAttribute:
			attrs = append(attrs, payload)
		}
		return nil
	})
	if err != nil || opType != "Constant" {
		return err
	}
	for _, attr := range attrs {
		err := eachField(attr, func(num protowire.Number, payload []byte) error {
			if num != fieldAttributeTensor {
				return nil
			}
			n, err := tensorElements(payload)
			if err != nil {
				return err
			}
			*total += n
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// tensorElements returns the product of a TensorProto's dims, or zero for
// a tensor with no dims (an empty shape carries no weights we count).
func tensorElements(tensor []byte) (uint64, error) {
	var dims []uint64
	b := tensor
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == fieldTensorDims && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			b = b[n:]
			dims = append(dims, v)
		case num == fieldTensorDims && typ == protowire.BytesType:
			// Packed encoding: the payload is a run of varints.
			packed, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			b = b[n:]
			for len(packed) > 0 {
				v, n := protowire.ConsumeVarint(packed)
				if n < 0 {
					return 0, protowire.ParseError(n)
				}
				packed = packed[n:]
				dims = append(dims, v)
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	if len(dims) == 0 {
		return 0, nil
	}
	count := uint64(1)
	for _, d := range dims {
		count *= d
	}
	return count, nil
}

// eachField iterates a message's fields, handing length-delimited payloads
// to fn and skipping everything else.
func eachField(b []byte, fn func(num protowire.Number, payload []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		if typ == protowire.BytesType {
			payload, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
			if err := fn(num, payload); err != nil {
				return err
			}
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
	}
	return nil
}
