package progress

// NoopProgress ничего не выводит. Используется при BR_SHOW_PROGRESS=false
// и в JSON режиме без потока событий.
type NoopProgress struct{}

// NewNoOp создаёт NoopProgress.
func NewNoOp() Progress {
	return &NoopProgress{}
}

// Start ничего не делает.
func (p *NoopProgress) Start(_ int, _ string) {}

// Step ничего не делает.
func (p *NoopProgress) Step(_ StepEvent) {}

// Finish ничего не делает.
func (p *NoopProgress) Finish() {}
