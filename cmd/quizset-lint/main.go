package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type lintBook struct {
	Title    string `json:"title"`
	QuizSets []struct {
		Title     string `json:"title"`
		Questions []struct {
			Text         string   `json:"text"`
			Options      []string `json:"options"`
			CorrectIndex int      `json:"correct_index"`
		} `json:"questions"`
	} `json:"quiz_sets"`
	Flashcards []struct {
		Front string `json:"front"`
		Back  string `json:"back"`
	} `json:"flashcards"`
}

func main() {
	files, err := filepath.Glob("./content/*.json")
	if err != nil {
		fmt.Println("error: cannot read ./content:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Println("no .json content files found in ./content")
		return
	}

	exitCode := 0
	for _, f := range files {
		bad := lintFile(f)
		if bad > 0 {
			exitCode = 1
		} else {
			fmt.Printf("%s: OK\n", f)
		}
	}
	os.Exit(exitCode)
}

func lintFile(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("%s: read error: %v\n", path, err)
		return 1
	}

	var book lintBook
	if err := json.Unmarshal(data, &book); err != nil {
		fmt.Printf("%s: parse error: %v\n", path, err)
		return 1
	}

	bad := 0
	if book.Title == "" {
		fmt.Printf("%s: missing book title\n", path)
		bad++
	}
	if len(book.QuizSets) == 0 && len(book.Flashcards) == 0 {
		fmt.Printf("%s: no quiz sets or flashcards\n", path)
		bad++
	}

	for si, set := range book.QuizSets {
		if set.Title == "" {
			fmt.Printf("%s: quiz set %d: missing title\n", path, si)
			bad++
		}
		if len(set.Questions) == 0 {
			fmt.Printf("%s: quiz set %d: no questions\n", path, si)
			bad++
		}
		for qi, q := range set.Questions {
			if q.Text == "" {
				fmt.Printf("%s: quiz set %d question %d: empty text\n", path, si, qi)
				bad++
			}
			if len(q.Options) < 2 {
				fmt.Printf("%s: quiz set %d question %d: needs at least 2 options\n", path, si, qi)
				bad++
			}
			if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
				fmt.Printf("%s: quiz set %d question %d: correct_index out of range\n", path, si, qi)
				bad++
			}
		}
	}

	for ci, card := range book.Flashcards {
		if card.Front == "" || card.Back == "" {
			fmt.Printf("%s: flashcard %d: needs both front and back\n", path, ci)
			bad++
		}
	}

	return bad
}
