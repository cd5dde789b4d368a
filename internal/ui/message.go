package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/genify/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	run  *analysisRun
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgProgressUpdate MsgKind = iota
	MsgAnalysisComplete
)

type analysisOutcome struct {
	result *tasks.AnalysisResult
	err    error
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(run *analysisRun, update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, run: run, data: update}
}

// analysisCompleteMsg is the constructor for [MsgAnalysisComplete]
func analysisCompleteMsg(run *analysisRun, result *tasks.AnalysisResult, err error) Msg {
	return Msg{
		kind: MsgAnalysisComplete,
		run:  run,
		data: analysisOutcome{result: result, err: err},
	}
}
