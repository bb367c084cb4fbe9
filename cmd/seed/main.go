// Package main provides a CLI for seeding the local registry database
// with a project and its accepted assignments, so project-start can be
// exercised without the wider product writing the rows.
package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/louisbranch/workroom.space/internal/platform/config"
	"github.com/louisbranch/workroom.space/internal/services/provisioner/domain"
	"github.com/louisbranch/workroom.space/internal/services/provisioner/storage/sqlite"
)

func main() {
	var dbPath string
	var projectID string
	var title string
	var clientEmail string
	var assignments string

	flag.StringVar(&dbPath, "db", "provisioner.db", "SQLite database path")
	flag.StringVar(&projectID, "project", "", "project id")
	flag.StringVar(&title, "title", "", "project title")
	flag.StringVar(&clientEmail, "client", "", "client email")
	flag.StringVar(&assignments, "assignments", "", "accepted assignments as email:profile:category, comma separated")
	flag.Parse()

	if projectID == "" || title == "" || clientEmail == "" {
		config.Exitf("usage: seed -project ID -title TITLE -client EMAIL [-assignments email:profile:category,...]")
	}

	store, err := sqlite.Open(dbPath)
	if err != nil {
		config.Exitf("open registry: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	project := domain.Project{ID: projectID, Title: title, ClientEmail: clientEmail}
	if err := store.CreateProject(ctx, project); err != nil {
		config.Exitf("create project: %v", err)
	}

	for _, entry := range strings.Split(assignments, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		assignment, err := parseAssignment(entry)
		if err != nil {
			config.Exitf("parse assignment %q: %v", entry, err)
		}
		if err := store.CreateAssignment(ctx, projectID, assignment, sqlite.StatusAccepted); err != nil {
			config.Exitf("create assignment %q: %v", entry, err)
		}
	}

	fmt.Printf("seeded project %s (%s)\n", projectID, title)
}

func parseAssignment(entry string) (domain.Assignment, error) {
	parts := strings.SplitN(entry, ":", 3)
	if len(parts) < 2 {
		return domain.Assignment{}, fmt.Errorf("want email:profile or email:profile:category")
	}
	assignment := domain.Assignment{
		Email:       strings.TrimSpace(parts[0]),
		ProfileName: strings.TrimSpace(parts[1]),
	}
	if len(parts) == 3 {
		assignment.Category = strings.TrimSpace(parts[2])
	}
	return assignment, nil
}
