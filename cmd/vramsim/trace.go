package main

import (
	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jreader"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

const (
	opCreate   = "create"
	opAllocate = "allocate"
	opRelease  = "release"
	opReload   = "reload"
)

// traceOp is a single operation of a frame. Data names the asset the operation applies to: creating
// the same name twice shares its blocks, allocating it twice does not.
type traceOp struct {
	Op    string
	Arena string
	Data  string
	Count int
}

type traceFrame struct {
	Ops []traceOp
}

// parseTrace reads a trace of the form {"frames":[{"ops":[{"op":"create","arena":"sprite","data":"a","count":4}]}]}
func parseTrace(data []byte) ([]traceFrame, error) {
	var frames []traceFrame

	r := jreader.NewReader(data)
	for obj := r.Object(); obj.Next(); {
		if string(obj.Name()) != "frames" {
			continue
		}

		for framesArr := r.Array(); framesArr.Next(); {
			frames = append(frames, readFrame(&r))
		}
	}

	if err := r.Error(); err != nil {
		return nil, errors.Wrap(err, "failed to parse trace")
	}

	for frameIndex, frame := range frames {
		for opIndex, op := range frame.Ops {
			switch op.Op {
			case opCreate, opAllocate:
				if op.Arena == "" || op.Data == "" {
					return nil, errors.Newf("frame %d op %d: %s requires an arena and a data name", frameIndex, opIndex, op.Op)
				}
			case opRelease, opReload:
				if op.Data == "" {
					return nil, errors.Newf("frame %d op %d: %s requires a data name", frameIndex, opIndex, op.Op)
				}
			default:
				return nil, errors.Newf("frame %d op %d: unknown op %q", frameIndex, opIndex, op.Op)
			}
		}
	}

	return frames, nil
}

func readFrame(r *jreader.Reader) traceFrame {
	var frame traceFrame

	for obj := r.Object(); obj.Next(); {
		if string(obj.Name()) != "ops" {
			continue
		}

		for opsArr := r.Array(); opsArr.Next(); {
			frame.Ops = append(frame.Ops, readOp(r))
		}
	}

	return frame
}

func readOp(r *jreader.Reader) traceOp {
	var op traceOp

	for obj := r.Object(); obj.Next(); {
		switch string(obj.Name()) {
		case "op":
			op.Op = r.String()
		case "arena":
			op.Arena = r.String()
		case "data":
			op.Data = r.String()
		case "count":
			op.Count = r.Int()
		}
	}

	return op
}

// writeTrace encodes frames in the format parseTrace reads
func writeTrace(frames []traceFrame) ([]byte, error) {
	writer := jwriter.NewWriter()

	obj := writer.Object()
	framesArr := obj.Name("frames").Array()
	for _, frame := range frames {
		frameObj := framesArr.Object()
		opsArr := frameObj.Name("ops").Array()
		for _, op := range frame.Ops {
			opObj := opsArr.Object()
			opObj.Name("op").String(op.Op)
			if op.Arena != "" {
				opObj.Name("arena").String(op.Arena)
			}
			opObj.Name("data").String(op.Data)
			if op.Count != 0 {
				opObj.Name("count").Int(op.Count)
			}
			opObj.End()
		}
		opsArr.End()
		frameObj.End()
	}
	framesArr.End()
	obj.End()

	if err := writer.Error(); err != nil {
		return nil, err
	}
	return writer.Bytes(), nil
}
