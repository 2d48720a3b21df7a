package claims

import (
	"strconv"
	"strings"
)

// segmentCountToken is substituted with the per-transaction segment count
// after the batch body is fully rendered.
const segmentCountToken = "{{segmentCount}}"

// render fills a claim template, replacing every occurrence of each
// {{name}} token with its field value. Tokens without a field are left
// in place so a template/field mismatch is visible in the output.
func render(template string, fields map[string]string) string {
	if len(fields) == 0 {
		return template
	}
	pairs := make([]string, 0, len(fields)*2)
	for name, value := range fields {
		pairs = append(pairs, "{{"+name+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// finalizeSegmentCounts walks the rendered batch line by line, counting EDI
// segments per ST/SE transaction: the ST line opens a transaction and counts
// as 1, every intervening line counts as 1, and the SE line counts as 1 and
// closes it. Each SE line's count token is replaced with its transaction's
// total.
func finalizeSegmentCounts(batch string) string {
	lines := strings.Split(batch, "\n")
	count := 0
	inTransaction := false

	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "ST*"):
			inTransaction = true
			count = 1
		case strings.HasPrefix(line, "SE*"):
			if inTransaction {
				count++
				lines[i] = strings.ReplaceAll(line, segmentCountToken, strconv.Itoa(count))
				inTransaction = false
			}
		default:
			if inTransaction {
				count++
			}
		}
	}

	return strings.Join(lines, "\n")
}
