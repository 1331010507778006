package classify

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// SubprocessRecognizer implements Recognizer using a Python sidecar
// that runs MediaPipe hand tracking and the alphabet classifier. Frames
// go out as length-prefixed JPEG; results come back as JSON lines.
type SubprocessRecognizer struct {
	config    Config
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	lastUsed  time.Time
	idleTimer *time.Timer
}

// NewSubprocessRecognizer creates a new subprocess recognizer. The
// Python process is started lazily on the first frame.
func NewSubprocessRecognizer(config Config) (*SubprocessRecognizer, error) {
	if findServiceScript() == "" {
		return nil, fmt.Errorf("classifier_service.py not found")
	}
	return &SubprocessRecognizer{config: config}, nil
}

// Recognize sends one frame to the sidecar and parses its prediction.
func (r *SubprocessRecognizer) Recognize(frame *gocv.Mat) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureStarted(); err != nil {
		return Result{}, err
	}

	// Encode frame as JPEG
	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return Result{}, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()

	// Write length (4 bytes big-endian) + data
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))

	if _, err := r.stdin.Write(length); err != nil {
		return Result{}, fmt.Errorf("write length: %w", err)
	}
	if _, err := r.stdin.Write(data); err != nil {
		return Result{}, fmt.Errorf("write data: %w", err)
	}

	// Read JSON response
	line, err := r.stdout.ReadString('\n')
	if err != nil {
		return Result{}, fmt.Errorf("read response: %w", err)
	}

	res, err := parseResponse([]byte(line))
	if err != nil {
		return Result{}, err
	}

	r.lastUsed = time.Now()
	r.resetIdleTimer()

	return res, nil
}

// Close shuts down the Python process.
func (r *SubprocessRecognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shutdown()
}

func (r *SubprocessRecognizer) ensureStarted() error {
	if r.started {
		return nil
	}

	scriptPath := findServiceScript()
	if scriptPath == "" {
		return fmt.Errorf("classifier_service.py not found")
	}

	// Use virtual environment Python if available
	pythonPath := findVenvPython()
	if pythonPath == "" {
		pythonPath = "python3"
	}

	r.cmd = exec.Command(pythonPath, scriptPath,
		fmt.Sprintf("--max-hands=%d", r.config.MaxHands),
		fmt.Sprintf("--min-confidence=%.2f", r.config.MinConfidence),
	)

	stdin, err := r.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := r.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	// Capture stderr for debugging
	r.cmd.Stderr = os.Stderr

	if err := r.cmd.Start(); err != nil {
		return fmt.Errorf("start classifier service: %w", err)
	}

	r.stdin = stdin
	r.stdout = bufio.NewReader(stdout)
	r.started = true
	r.lastUsed = time.Now()

	return nil
}

func (r *SubprocessRecognizer) shutdown() error {
	if !r.started {
		return nil
	}

	if r.idleTimer != nil {
		r.idleTimer.Stop()
		r.idleTimer = nil
	}

	if r.stdin != nil {
		r.stdin.Close()
	}

	err := r.cmd.Wait()
	r.started = false
	r.cmd = nil
	r.stdin = nil
	r.stdout = nil

	return err
}

func (r *SubprocessRecognizer) resetIdleTimer() {
	if r.idleTimer != nil {
		r.idleTimer.Stop()
	}
	r.idleTimer = time.AfterFunc(30*time.Second, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.shutdown()
	})
}

// serviceResponse is the JSON structure from the Python sidecar.
type serviceResponse struct {
	Hands      []jsonHand         `json:"hands"`
	Probs      map[string]float64 `json:"probs"`
	Top        string             `json:"top"`
	Confidence float64            `json:"confidence"`
}

type jsonHand struct {
	Points     []jsonPoint `json:"points"`
	Handedness string      `json:"handedness"`
	Score      float64     `json:"score"`
}

type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// parseResponse decodes one sidecar line into a Result.
func parseResponse(line []byte) (Result, error) {
	var resp serviceResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return Result{}, fmt.Errorf("parse response: %w", err)
	}

	res := Result{
		Probs:    resp.Probs,
		TopClass: resp.Top,
		TopConf:  resp.Confidence,
	}
	res.Hands = make([]HandLandmarks, len(resp.Hands))
	for i, h := range resp.Hands {
		res.Hands[i] = h.toHandLandmarks()
	}
	return res, nil
}

func (h jsonHand) toHandLandmarks() HandLandmarks {
	lm := HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}
	for i := 0; i < NumLandmarks && i < len(h.Points); i++ {
		lm.Points[i] = Point3D{
			X: h.Points[i].X,
			Y: h.Points[i].Y,
			Z: h.Points[i].Z,
		}
	}
	return lm
}

func findServiceScript() string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"scripts/classifier_service.py",
		"../scripts/classifier_service.py",
		filepath.Join(execDir, "scripts/classifier_service.py"),
		filepath.Join(os.Getenv("HOME"), ".mudra/scripts/classifier_service.py"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// findVenvPython looks for a Python interpreter in a virtual
// environment near the executable or the user's data directory.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".mudra/venv/bin/python"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}
