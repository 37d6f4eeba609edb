// Imports projects from the local file store into the database.
//
// Useful when a deployment that started in local mode gains a database:
// records from data/projects.json are re-saved through the database store
// and assigned to the given owner.
//
// Usage: go run scripts/import_local_projects.go -owner 1

package main

import (
	"context"
	"flag"
	"log"

	"devforge_backend/internal/config"
	"devforge_backend/internal/repository"
	"devforge_backend/pkg/database"
	"devforge_backend/pkg/logger"
)

func main() {
	owner := flag.Uint("owner", 0, "user id to assign the imported projects to")
	flag.Parse()

	if *owner == 0 {
		log.Fatal("-owner is required")
	}

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.LocalMode() {
		log.Fatal("No database configured; nothing to import into")
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database, true)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	source := repository.NewLocalProjectStore(cfg.Projects.LocalPath)
	dest := repository.NewProjectRepository(db)

	projects, err := source.List(ctx, 0)
	if err != nil {
		log.Fatalf("Failed to read local store %s: %v", cfg.Projects.LocalPath, err)
	}
	if len(projects) == 0 {
		log.Printf("Local store %s is empty, nothing to do", cfg.Projects.LocalPath)
		return
	}

	imported := 0
	for i := range projects {
		p := projects[i]
		p.OwnerID = *owner
		if _, err := dest.Save(ctx, &p); err != nil {
			log.Printf("Skipping %s (%s): %v", p.ID, p.Title, err)
			continue
		}
		imported++
	}

	log.Printf("Imported %d of %d projects for owner %d", imported, len(projects), *owner)
}
