package domain

import (
	"sort"
	"strings"
)

// CategoryProfiles groups accepted assignment profile names by category.
// It is computed once per invocation and shared read-only between the
// storage subfolder step and the task-board step.
type CategoryProfiles map[string][]string

// Categories returns the category names in stable sorted order.
func (c CategoryProfiles) Categories() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GroupByCategory buckets assignment profile names by category name.
// Assignments without a category land in "General".
func GroupByCategory(assignments []Assignment) CategoryProfiles {
	grouped := make(CategoryProfiles)
	for _, assignment := range assignments {
		category := strings.TrimSpace(assignment.Category)
		if category == "" {
			category = "General"
		}
		profile := strings.TrimSpace(assignment.ProfileName)
		if profile == "" {
			continue
		}
		grouped[category] = append(grouped[category], profile)
	}
	return grouped
}

// normalizeEmails trims, lowercases, and de-duplicates while preserving
// first-seen order.
func normalizeEmails(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	out := make([]string, 0, len(emails))
	for _, email := range emails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" {
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}
	return out
}

// normalizeRoster returns a copy of the roster with clean, unique email
// lists per role. A member appearing in both lists stays in both: the
// upstream behavior for dual-role members is undefined, so both group
// memberships are provisioned and only the email fan-out de-duplicates.
func normalizeRoster(roster MemberRoster) MemberRoster {
	return MemberRoster{
		Client:    normalizeEmails(roster.Client),
		Resources: normalizeEmails(roster.Resources),
	}
}

// allMembers returns the de-duplicated union of both role lists.
func allMembers(roster MemberRoster) []string {
	return normalizeEmails(append(append([]string{}, roster.Client...), roster.Resources...))
}
