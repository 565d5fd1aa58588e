package feedback

import (
	"strings"

	"github.com/fakeyudi/parley/internal/fileref"
)

// Assemble builds the Result emitted at session end. File references in the
// text buffer are expanded in place, then the selected options are appended
// after the user's text in their original declaration order. Selections
// never replace typed text.
func Assemble(req Request, text string, selected map[int]bool, imagePaths []string, timedOut bool) Result {
	body := fileref.Expand(strings.TrimSpace(text), req.ProjectDirectory)

	chosen := make([]string, 0, len(selected))
	for i, opt := range req.Options {
		if selected[i] {
			chosen = append(chosen, opt)
		}
	}

	if len(chosen) > 0 {
		var sb strings.Builder
		sb.WriteString(body)
		if body != "" {
			sb.WriteString("\n\n")
		}
		for i, opt := range chosen {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString("[selected] " + opt)
		}
		body = sb.String()
	}

	if imagePaths == nil {
		imagePaths = []string{}
	}
	return Result{
		InteractiveFeedback: body,
		ImagePaths:          imagePaths,
		SelectedOptions:     chosen,
		TimeoutTriggered:    timedOut,
	}
}
