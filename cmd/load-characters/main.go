package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"guesswho/internal/config"
	"guesswho/internal/db"

	"github.com/google/uuid"
)

type characterSetFile struct {
	Sets []struct {
		Name       string `json:"name"`
		CreatedBy  string `json:"created_by"`
		IsPublic   *bool  `json:"is_public"`
		Characters []struct {
			Name     string `json:"name"`
			ImageURL string `json:"image_url"`
		} `json:"characters"`
	} `json:"sets"`
}

func main() {
	filePath := flag.String("file", "characters.json", "path to character sets json")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}

	conn, err := db.Open()
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	sets, err := readSets(*filePath)
	if err != nil {
		log.Fatalf("failed to read character sets: %v", err)
	}

	loaded := 0
	for _, set := range sets.Sets {
		if len(set.Characters) < 2 {
			log.Fatalf("character set %q needs at least two characters", set.Name)
		}
		record := db.CharacterSet{
			ID:        uuid.New(),
			Name:      set.Name,
			CreatedBy: set.CreatedBy,
			IsPublic:  set.IsPublic == nil || *set.IsPublic,
		}
		if record.CreatedBy == "" {
			record.CreatedBy = "system"
		}
		for _, character := range set.Characters {
			record.Characters = append(record.Characters, db.Character{
				ID:       uuid.New(),
				Name:     character.Name,
				ImageURL: character.ImageURL,
			})
		}
		var existing db.CharacterSet
		if err := conn.Where("name = ?", record.Name).First(&existing).Error; err == nil {
			log.Printf("character set already loaded name=%q", record.Name)
			continue
		}
		if err := conn.Create(&record).Error; err != nil {
			log.Fatalf("failed to insert character set %q: %v", record.Name, err)
		}
		loaded++
	}

	log.Printf("loaded %d character sets", loaded)
}

func readSets(path string) (*characterSetFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sets characterSetFile
	if err := json.Unmarshal(data, &sets); err != nil {
		return nil, err
	}
	return &sets, nil
}
