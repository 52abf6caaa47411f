package onnx

import (
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// InputName is the tensor name every competition model must expose.
const InputName = "board"

// InputWidth is the per-position input length the models accept.
const InputWidth = 768

// Session wraps an ONNX Runtime session behind the evaluator boundary.
// Runtime sessions are not assumed reentrant, so calls are serialized with
// a mutex; the driver may then run games from any number of goroutines.
type Session struct {
	mu         sync.Mutex
	session    *ort.DynamicAdvancedSession
	outputDim  int
	paramCount uint64
}

// envSharedLibrary points at the onnxruntime shared library when it is not
// on the default loader path.
const envSharedLibrary = "ONNXRUNTIME_SHARED_LIBRARY_PATH"

var initOnce sync.Once

func ensureRuntime() error {
	var err error
	initOnce.Do(func() {
		if ort.IsInitialized() {
			return
		}
		if lib := os.Getenv(envSharedLibrary); lib != "" {
			ort.SetSharedLibraryPath(lib)
		}
		err = ort.InitializeEnvironment()
	})
	return err
}

// Load validates a model file and opens a session for it. Validation
// happens before any game is played: the parameter budget, the required
// "board" input, its shape and dtype, and at least one output. Only the
// first output is used; its float32 type is checked when inference runs.
func Load(path string, maxParams uint64) (*Session, error) {
	count, err := CountParameters(path)
	if err != nil {
		return nil, err
	}
	if count > maxParams {
		return nil, fmt.Errorf("model rejected: %d parameters exceeds the %d limit", count, maxParams)
	}

	if err := ensureRuntime(); err != nil {
		return nil, fmt.Errorf("initialize onnxruntime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, fmt.Errorf("inspect model %s: %w", path, err)
	}

	var boardInput *ort.InputOutputInfo
	for i := range inputs {
		if inputs[i].Name == InputName {
			boardInput = &inputs[i]
			break
		}
	}
	if boardInput == nil {
		return nil, fmt.Errorf("model rejected: no input tensor named %q", InputName)
	}
	if dims := boardInput.Dimensions; len(dims) != 2 || dims[len(dims)-1] != InputWidth {
		return nil, fmt.Errorf("model rejected: input %q has shape %v, want [N %d]",
			InputName, boardInput.Dimensions, InputWidth)
	}
	if boardInput.DataType != ort.TensorElementDataTypeFloat {
		return nil, fmt.Errorf("model rejected: input %q must be float32", InputName)
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("model rejected: no outputs")
	}
	outDims := outputs[0].Dimensions
	outputDim := 1
	if len(outDims) > 0 {
		if last := outDims[len(outDims)-1]; last > 0 {
			outputDim = int(last)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(path,
		[]string{InputName}, []string{outputs[0].Name}, nil)
	if err != nil {
		return nil, fmt.Errorf("open session for %s: %w", path, err)
	}

	return &Session{
		session:    session,
		outputDim:  outputDim,
		paramCount: count,
	}, nil
}

// ParamCount returns the model's counted parameter total.
func (s *Session) ParamCount() uint64 { return s.paramCount }

// OutputDim returns the width of one output row: 1 for evaluation models,
// 4096 for policy models.
func (s *Session) OutputDim() int { return s.outputDim }

// Close releases the underlying runtime session.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil {
		err := s.session.Destroy()
		s.session = nil
		return err
	}
	return nil
}

// run executes one batched inference call and returns one output row per
// input row.
func (s *Session) run(batch [][]float32) ([][]float32, error) {
	n := len(batch)
	if n == 0 {
		return nil, nil
	}
	flat := make([]float32, 0, n*InputWidth)
	for i, row := range batch {
		if len(row) != InputWidth {
			return nil, fmt.Errorf("batch row %d has %d values, want %d", i, len(row), InputWidth)
		}
		flat = append(flat, row...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, fmt.Errorf("session is closed")
	}

	input, err := ort.NewTensor(ort.NewShape(int64(n), InputWidth), flat)
	if err != nil {
		return nil, fmt.Errorf("build input tensor: %w", err)
	}
	defer input.Destroy()

	outputs := []ort.Value{nil}
	if err := s.session.Run([]ort.Value{input}, outputs); err != nil {
		return nil, fmt.Errorf("inference on batch of %d: %w", n, err)
	}
	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("model produced a non-float32 output")
	}
	defer out.Destroy()

	data := out.GetData()
	if len(data) != n*s.outputDim {
		return nil, fmt.Errorf("model produced %d values for batch of %d (output width %d)",
			len(data), n, s.outputDim)
	}
	rows := make([][]float32, n)
	for i := range rows {
		row := make([]float32, s.outputDim)
		copy(row, data[i*s.outputDim:(i+1)*s.outputDim])
		rows[i] = row
	}
	return rows, nil
}

// Evaluate implements nn.Evaluator for scalar-output models.
func (s *Session) Evaluate(batch [][]float32) ([]float32, error) {
	if s.outputDim != 1 {
		return nil, fmt.Errorf("model output width is %d, not a scalar evaluator", s.outputDim)
	}
	rows, err := s.run(batch)
	if err != nil {
		return nil, err
	}
	scores := make([]float32, len(rows))
	for i, row := range rows {
		scores[i] = row[0]
	}
	return scores, nil
}

// Policy implements nn.PolicyEvaluator for move-logit models.
func (s *Session) Policy(encoded []float32) ([]float32, error) {
	rows, err := s.run([][]float32{encoded})
	if err != nil {
		return nil, err
	}
	return rows[0], nil
}
