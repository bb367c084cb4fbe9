package domain

import (
	"reflect"
	"testing"
)

func TestGroupByCategoryBucketsProfiles(t *testing.T) {
	t.Parallel()

	assignments := []Assignment{
		{Email: "a@x.com", ProfileName: "Designer A", Category: "Design"},
		{Email: "b@x.com", ProfileName: "Designer B", Category: "Design"},
		{Email: "c@x.com", ProfileName: "Engineer C", Category: "Engineering"},
		{Email: "d@x.com", ProfileName: "Floater D", Category: ""},
		{Email: "e@x.com", ProfileName: "", Category: "Design"},
	}

	grouped := GroupByCategory(assignments)
	if got := grouped.Categories(); !reflect.DeepEqual(got, []string{"Design", "Engineering", "General"}) {
		t.Fatalf("unexpected categories %v", got)
	}
	if got := grouped["Design"]; !reflect.DeepEqual(got, []string{"Designer A", "Designer B"}) {
		t.Fatalf("unexpected design profiles %v", got)
	}
	if got := grouped["General"]; !reflect.DeepEqual(got, []string{"Floater D"}) {
		t.Fatalf("unexpected general profiles %v", got)
	}
}

func TestNormalizeRosterDeduplicates(t *testing.T) {
	t.Parallel()

	roster := normalizeRoster(MemberRoster{
		Client:    []string{" C@x.com ", "c@x.com", ""},
		Resources: []string{"r1@x.com", "R1@x.com", "r2@x.com"},
	})
	if !reflect.DeepEqual(roster.Client, []string{"c@x.com"}) {
		t.Fatalf("unexpected client list %v", roster.Client)
	}
	if !reflect.DeepEqual(roster.Resources, []string{"r1@x.com", "r2@x.com"}) {
		t.Fatalf("unexpected resource list %v", roster.Resources)
	}
}

func TestAllMembersUnion(t *testing.T) {
	t.Parallel()

	roster := MemberRoster{
		Client:    []string{"both@x.com"},
		Resources: []string{"r1@x.com", "both@x.com"},
	}
	if got := allMembers(roster); !reflect.DeepEqual(got, []string{"both@x.com", "r1@x.com"}) {
		t.Fatalf("unexpected union %v", got)
	}
}
