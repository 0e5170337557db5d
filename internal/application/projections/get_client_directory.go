package projections

import (
	"context"
	"strings"

	"zefit/internal/adapters/storage/member"
	domainMember "zefit/internal/domain/member"
)

// GetClientDirectoryQuery carries the directory filters. Every non-empty
// filter must match; Name, Phone and CardCode are case-insensitive substrings.
type GetClientDirectoryQuery struct {
	Name       string
	Phone      string
	CardCode   string
	Status     string
	Barcode    string // scanned card code; the first match becomes the selection
	SelectedID string // current selection, kept when the barcode matches nothing
}

// GetClientDirectoryResult carries the filtered members and the selection.
type GetClientDirectoryResult struct {
	Members    []domainMember.Member
	SelectedID string
	Scanned    bool // a barcode was given and matched
}

// GetClientDirectoryDeps holds dependencies for GetClientDirectory.
type GetClientDirectoryDeps struct {
	MemberStore MemberStore
}

// QueryGetClientDirectory filters members and resolves a barcode scan.
// PRE: none
// POST: Members keep the store order (newest first); SelectedID is the first
// barcode match, or the previous selection when nothing matched
func QueryGetClientDirectory(ctx context.Context, query GetClientDirectoryQuery, deps GetClientDirectoryDeps) (GetClientDirectoryResult, error) {
	all, err := deps.MemberStore.List(ctx, member.ListFilter{})
	if err != nil {
		return GetClientDirectoryResult{}, err
	}

	result := GetClientDirectoryResult{SelectedID: query.SelectedID}
	for _, m := range all {
		if matchesDirectory(m, query) {
			result.Members = append(result.Members, m)
		}
	}

	if code := strings.TrimSpace(query.Barcode); code != "" {
		for _, m := range all {
			if domainMember.MatchesQuery(m.CardCode, code) {
				result.SelectedID = m.ID
				result.Scanned = true
				break
			}
		}
	}
	return result, nil
}

func matchesDirectory(m domainMember.Member, q GetClientDirectoryQuery) bool {
	if q.Status != "" && m.Status != q.Status {
		return false
	}
	return domainMember.MatchesQuery(m.FullName, q.Name) &&
		domainMember.MatchesQuery(m.Phone, q.Phone) &&
		domainMember.MatchesQuery(m.CardCode, q.CardCode)
}
