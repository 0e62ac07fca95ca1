package rsync

import (
	"regexp"
	"strconv"
	"strings"

	"shuttle/internal/ports"
)

var (
	// "Number of regular files transferred: 3" (rsync >= 3.1) or
	// "Number of files transferred: 3" (older releases).
	transferredPattern = regexp.MustCompile(`Number of (?:regular )?files transferred: ([\d,]+)`)
	bytesPattern       = regexp.MustCompile(`Total transferred file size: ([\d,]+) bytes`)

	// Itemized change lines: "<f+++++++++ a.txt", ">f..t...... b/c.txt",
	// "cd+++++++++ docs/", "*deleting old.txt".
	itemizePattern = regexp.MustCompile(`^(?:[<>ch.][fdLDS][.+?cstpoguax]+|\*\w+)\s+(.+)$`)
)

// parseOutcome extracts transfer counts from rsync --stats output. On a
// dry run the itemized change list is surfaced as planned actions, so
// "would transfer N files" is never conflated with "nothing matched":
// the caller inspects Planned, not the absence of materialized files.
func parseOutcome(stdout string, dryRun bool) *ports.Outcome {
	outcome := &ports.Outcome{
		Transferred: parseCount(transferredPattern, stdout),
		Bytes:       int64(parseCount(bytesPattern, stdout)),
	}

	if dryRun {
		for _, line := range strings.Split(stdout, "\n") {
			if m := itemizePattern.FindStringSubmatch(strings.TrimRight(line, "\r")); m != nil {
				outcome.Planned = append(outcome.Planned, m[1])
			}
		}
	}
	return outcome
}

func parseCount(pattern *regexp.Regexp, s string) int {
	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0
	}
	return n
}
