package model

import (
	"fmt"
	"strings"
)

// relationshipCodes is the X12-style relationship-to-insured table the
// clearinghouse accepts. Keys are normalized lowercase with spaces removed.
var relationshipCodes = map[string]string{
	"self":        "18",
	"spouse":      "01",
	"child":       "19",
	"lifepartner": "29",
	"other":       "G8",
}

// RelationshipCode maps a relationship-to-insured value to its 2-character
// claim code. An unmapped relationship is a hard error, never a default.
func RelationshipCode(relationship string) (string, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(relationship)), " ", "")
	code, ok := relationshipCodes[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnmappedRelationship, relationship)
	}
	return code, nil
}

// PlaceOfServiceCode maps a session location to its CMS place-of-service code.
func PlaceOfServiceCode(pos PlaceOfService) (string, error) {
	switch pos {
	case PlaceMainOffice:
		return "11", nil
	case PlaceTelehealth:
		return "02", nil
	case PlaceResidence:
		return "12", nil
	case PlaceOtherLocation:
		return "99", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnmappedPlaceOfService, pos)
	}
}
