package table

import "strings"

// ValidateCreateTable applies the structural rules of spec §4.C to a parsed
// CREATE TABLE statement with no metadata columns yet injected.
func ValidateCreateTable(s *Statement) error {
	if len(s.Columns) == 0 {
		return ErrTooFewColumns
	}
	seen := make(map[string]struct{}, len(s.Columns))
	for _, c := range s.Columns {
		if _, dup := seen[c.Identifier]; dup {
			return ErrDuplicateIdentifier
		}
		seen[c.Identifier] = struct{}{}

		if strings.HasPrefix(c.Identifier, ReservedMetaPrefix) {
			return ErrReservedPrefix
		}
		if !c.NotNull {
			return ErrMissingNotNull
		}
	}
	return nil
}
