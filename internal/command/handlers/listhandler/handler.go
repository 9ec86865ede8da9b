// Package listhandler реализует команду list: перечень наборов сценариев
// с их шагами и зависимостями.
package listhandler

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Kargones/loopcheck/internal/command"
	"github.com/Kargones/loopcheck/internal/command/handlers/shared"
	"github.com/Kargones/loopcheck/internal/config"
	"github.com/Kargones/loopcheck/internal/constants"
	"github.com/Kargones/loopcheck/internal/pkg/dryrun"
	"github.com/Kargones/loopcheck/internal/pkg/output"
	"github.com/Kargones/loopcheck/internal/suites"
)

func RegisterCmd() error {
	return command.Register(&ListHandler{})
}

// SuiteInfo описывает набор сценариев.
type SuiteInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Critical    bool     `json:"critical,omitempty"`
	DependsOn   []string `json:"depends_on,omitempty"`
	Steps       []string `json:"steps"`
}

// Data — результат команды list.
type Data struct {
	Suites []SuiteInfo `json:"suites"`
}

// WriteText печатает наборы по одному блоку.
func (d *Data) WriteText(w io.Writer) error {
	for _, s := range d.Suites {
		header := s.Name
		if s.Critical {
			header += " (критичный)"
		}
		if _, err := fmt.Fprintf(w, "%s — %s\n", header, s.Description); err != nil {
			return err
		}
		if len(s.DependsOn) > 0 {
			if _, err := fmt.Fprintf(w, "  зависит от: %s\n", strings.Join(s.DependsOn, ", ")); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "  шаги: %s\n", strings.Join(s.Steps, ", ")); err != nil {
			return err
		}
	}
	return nil
}

// ListHandler обрабатывает команду list.
type ListHandler struct{}

func (h *ListHandler) Name() string { return constants.ActList }

func (h *ListHandler) Description() string {
	return "Список наборов сценариев и их шагов"
}

// Execute печатает все зарегистрированные наборы в порядке выполнения.
func (h *ListHandler) Execute(ctx context.Context, _ *config.Config) error {
	exec := shared.NewExec(ctx, constants.ActList)
	if !dryrun.IsDryRun() && dryrun.IsPlanOnly() {
		return dryrun.WritePlanOnlyUnsupported(exec.Out, constants.ActList)
	}

	data := buildData()
	if !exec.JSON() {
		return data.WriteText(exec.Out)
	}
	return exec.Write(&output.Result{
		Status: output.StatusSuccess,
		Data:   data,
	})
}

func buildData() *Data {
	built, err := suites.Build(nil, suites.Options{})
	if err != nil {
		return &Data{}
	}
	data := &Data{Suites: make([]SuiteInfo, 0, len(built))}
	for _, s := range built {
		steps := make([]string, 0, len(s.Steps))
		for _, st := range s.Steps {
			steps = append(steps, st.Name)
		}
		data.Suites = append(data.Suites, SuiteInfo{
			Name:        s.Name,
			Description: s.Description,
			Critical:    s.Critical,
			DependsOn:   suites.Dependencies(s.Name),
			Steps:       steps,
		})
	}
	return data
}
