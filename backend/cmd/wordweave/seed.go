package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"wordweave/backend/internal/app"
	"wordweave/backend/internal/lexicon"
)

// starterCorpus gives a cold graph something to learn from: a few
// definitions and one sentence per relation marker family.
var starterCorpus = []lexicon.ContentRecord{
	{Word: "happy", Category: "emotion", Sentence: "Happy means feeling or showing pleasure."},
	{Word: "happy", Category: "emotion", Sentence: "Happy is similar to joyful."},
	{Word: "sad", Category: "emotion", Sentence: "Sad is the opposite of happy."},
	{Word: "curious", Category: "emotion", Sentence: "Curious is another word for inquisitive."},
	{Word: "calm", Category: "emotion", Sentence: "Calm as opposed to anxious."},
	{Word: "sun", Category: "nature", Sentence: "The sun is a star at the center of our solar system."},
	{Word: "rain", Category: "nature", Sentence: "Rain refers to water falling in drops from clouds."},
	{Word: "day", Category: "time", Sentence: "Day is the opposite of night."},
	{Word: "world", Category: "place", Sentence: "World is the same as earth."},
	{Word: "idea", Category: "thought", Sentence: "An idea is a thought or suggestion about a possible course of action."},
	{Word: "learn", Category: "thought", Sentence: "Learn means to gain knowledge or skill by study or experience."},
	{Word: "question", Category: "thought", Sentence: "Unlike an answer, a question asks for information."},
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Queue a starter corpus for the learning cycle",
		Long: `Queue content records for the next learning cycles. Without --file a
small built-in corpus is used. A file holds one record per line in the form

  word|category|sentence

Blank lines and lines starting with # are skipped. Records already queued
only have their frequency bumped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			records := starterCorpus
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("failed to open seed file: %w", err)
				}
				defer f.Close()
				if records, err = parseSeed(f); err != nil {
					return err
				}
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				queued := 0
				for _, rec := range records {
					rec.Language = a.Config.Language
					if _, err := a.Backend.SaveContent(ctx, rec); err != nil {
						return fmt.Errorf("failed to queue %q: %w", rec.Sentence, err)
					}
					queued++
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Queued %d records.\n", queued)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "seed file of word|category|sentence lines")
	return cmd
}

func parseSeed(r io.Reader) ([]lexicon.ContentRecord, error) {
	var records []lexicon.ContentRecord
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		parts := strings.SplitN(text, "|", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("line %d: want word|category|sentence", line)
		}
		word := lexicon.Normalize(parts[0])
		if !lexicon.IsValidWord(word) {
			return nil, fmt.Errorf("line %d: invalid word %q", line, parts[0])
		}
		records = append(records, lexicon.ContentRecord{
			Word:     word,
			Category: strings.TrimSpace(parts[1]),
			Sentence: strings.TrimSpace(parts[2]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return records, nil
}
