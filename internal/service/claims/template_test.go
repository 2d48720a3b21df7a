package claims

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderReplacesEveryOccurrence(t *testing.T) {
	out := render("NM1*{{lastName}}*{{firstName}}~\nREF*{{lastName}}~", map[string]string{
		"firstName": "Jane",
		"lastName":  "Doe",
	})
	assert.Equal(t, "NM1*Doe*Jane~\nREF*Doe~", out)
}

func TestRenderLeavesUnknownTokens(t *testing.T) {
	out := render("DMG*{{dob}}*{{gender}}~", map[string]string{"dob": "19900101"})
	assert.Equal(t, "DMG*19900101*{{gender}}~", out)
}

func TestFinalizeSegmentCounts(t *testing.T) {
	batch := "ISA*00~\n" +
		"ST*837*0001~\n" +
		"BHT*0019~\n" +
		"NM1*41~\n" +
		"CLM*123~\n" +
		"SE*{{segmentCount}}*0001~\n" +
		"GE*1~"

	out := finalizeSegmentCounts(batch)
	assert.Contains(t, out, "SE*5*0001~")
	assert.NotContains(t, out, "{{segmentCount}}")
}

func TestFinalizeSegmentCountsPerTransaction(t *testing.T) {
	batch := "ISA*00~\n" +
		"ST*837*0001~\n" +
		"CLM*1~\n" +
		"SE*{{segmentCount}}*0001~\n" +
		"ST*837*0002~\n" +
		"CLM*2~\n" +
		"SV1*90837~\n" +
		"SE*{{segmentCount}}*0002~\n" +
		"IEA*1~"

	out := finalizeSegmentCounts(batch)
	assert.Contains(t, out, "SE*3*0001~")
	assert.Contains(t, out, "SE*4*0002~")
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "150.00", formatCents(15000))
	assert.Equal(t, "0.05", formatCents(5))
	assert.Equal(t, "12.30", formatCents(1230))
}

func TestLastNamePrefix(t *testing.T) {
	assert.Equal(t, "DOE", lastNamePrefix("Doe"))
	assert.Equal(t, "OBR", lastNamePrefix("O'Brien"))
	assert.Equal(t, "LI", lastNamePrefix("Li"))
	assert.Equal(t, "SMI", lastNamePrefix("Smith-Jones"))
}

func TestGenderCode(t *testing.T) {
	assert.Equal(t, "M", genderCode("male"))
	assert.Equal(t, "F", genderCode("Female"))
	assert.Equal(t, "U", genderCode("nonbinary"))
	assert.Equal(t, "U", genderCode(""))
}
