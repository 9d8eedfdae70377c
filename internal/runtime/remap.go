package runtime

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/aretw0/redscript/pkg/domain"
)

// positionPattern matches the positions Redis embeds in script errors:
// "user_script:3", "@user_script:3", "user_script line:3", "<string>:3" and
// the older "f_<sha1>:3". Runtime errors from miniredis carry an empty chunk
// name ("(new function): :3:" and "traceback:\n\t:3:"), so a bare ":3" is only
// taken after those two anchors, which are kept in the output.
var positionPattern = regexp.MustCompile(`(?:(?:@?user_script|<string>|f_[0-9a-f]{40})(?::| line:)|(\(new function\): |traceback:\s+):)(\d+)`)

// Remap rewrites every script position embedded in err to a file:line in the
// original sources. Errors without a position are returned unchanged.
func Remap(err error, script string, shared *domain.PreludeState) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if !positionPattern.MatchString(msg) {
		return err
	}

	rewritten := positionPattern.ReplaceAllStringFunc(msg, func(match string) string {
		groups := positionPattern.FindStringSubmatch(match)
		line, convErr := strconv.Atoi(groups[2])
		if convErr != nil {
			return match
		}
		return groups[1] + Locate(line, script, shared)
	})

	serr := &domain.ScriptError{Script: script, Message: rewritten, Err: err}
	if shared != nil {
		serr.Prelude = shared.Path
	}
	return serr
}

// Locate maps a 1-based line of the combined script to its source file.
// Lines up to the prelude's offset, preamble included, belong to the prelude.
func Locate(line int, script string, shared *domain.PreludeState) string {
	if shared == nil {
		return fmt.Sprintf("%s:%d", script, line)
	}
	if line <= shared.LineOffset {
		return fmt.Sprintf("%s:%d", shared.Path, line)
	}
	return fmt.Sprintf("%s:%d", script, line-shared.LineOffset)
}
