package main

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/furniture-core/pkg/codec"
)

// cliUI answers notices with choices fixed on the command line and logs
// every notice it sees.
type cliUI struct {
	log      *zap.Logger
	answers  map[codec.NoticeKind]string
	selected []uuid.UUID
}

func newCLIUI(log *zap.Logger) *cliUI {
	return &cliUI{log: log, answers: make(map[codec.NoticeKind]string)}
}

// Prompt implements codec.UI.
func (u *cliUI) Prompt(n codec.Notice) string {
	answer, ok := u.answers[n.Kind]
	if !ok {
		answer = codec.ChoiceOK
	}
	u.log.Warn(n.Message, zap.Stringer("notice", n.Kind), zap.String("answer", answer))
	return answer
}

// Select implements codec.UI.
func (u *cliUI) Select(ids []uuid.UUID) {
	u.selected = append(u.selected, ids...)
}
