package codec

import (
	"fmt"

	"github.com/google/uuid"
)

// NoticeKind classifies a non-fatal condition found while converting.
type NoticeKind int

const (
	ModelClipping        NoticeKind = iota // Geometry outside the envelope (export)
	InvalidBuiltinParent                   // Builtin item parent dropped because elements exist (export)
	ChildModelOnly                         // Parent reference without elements (import)
	MissingTexture                         // Texture image absent from the archive (import)
	UnresolvedTexture                      // Face references an undeclared slot (import)
	MalformedField                         // A document field could not be decoded (import)
	SchemaMismatch                         // Document does not match the published schema (import)
)

// String returns the notice's key.
func (k NoticeKind) String() string {
	switch k {
	case ModelClipping:
		return "model_clipping"
	case InvalidBuiltinParent:
		return "invalid_builtin_parent"
	case ChildModelOnly:
		return "child_model_only"
	case MissingTexture:
		return "missing_texture"
	case UnresolvedTexture:
		return "unresolved_texture"
	case MalformedField:
		return "malformed_field"
	case SchemaMismatch:
		return "schema_mismatch"
	default:
		return fmt.Sprintf("notice(%d)", int(k))
	}
}

// Choices offered to the user for a notice.
const (
	ChoiceOK               = "ok"
	ChoiceSelectOverflow   = "select_overflow"
	ChoiceOpen             = "open"
	ChoiceOpenWithTextures = "open_with_textures"
)

// Notice is an advisory produced by Compile or Parse.
type Notice struct {
	Kind    NoticeKind
	Message string

	Boxes   []uuid.UUID // ModelClipping: offending boxes
	Parent  string      // InvalidBuiltinParent, ChildModelOnly
	Texture string      // MissingTexture, UnresolvedTexture: slot id
	Field   string      // MalformedField: document key

	// Choices lists what the presenter may answer, ChoiceOK always being safe.
	Choices []string
}

func (n Notice) String() string {
	return fmt.Sprintf("%s: %s", n.Kind, n.Message)
}

// UI is the presentation layer notices are handed to.
type UI interface {
	// Prompt shows the notice and returns one of its Choices.
	Prompt(n Notice) string
	// Select makes the given boxes the current selection.
	Select(ids []uuid.UUID)
}

// Present shows notices in order and performs the follow-up the user picks
// for clipping notices. It returns the choice made for each notice; choices
// for ChildModelOnly are acted on by FollowParent.
func Present(ui UI, notices []Notice) []string {
	answers := make([]string, len(notices))
	for i, n := range notices {
		answer := ui.Prompt(n)
		if !n.allows(answer) {
			answer = ChoiceOK
		}
		answers[i] = answer
		if n.Kind == ModelClipping && answer == ChoiceSelectOverflow {
			ui.Select(n.Boxes)
		}
	}
	return answers
}

func (n Notice) allows(choice string) bool {
	if choice == ChoiceOK {
		return true
	}
	for _, c := range n.Choices {
		if c == choice {
			return true
		}
	}
	return false
}
