package prompt

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/ornastudio/ornament-backend/internal/model"
)

const placeholderBlock = "{instructions}\n\n{rules}\n{global_instruction_rule}"

// SeedStore is the subset of the template repository seeding needs.
// FindByKey returns (nil, nil) when the key does not exist.
type SeedStore interface {
	FindByKey(ctx context.Context, key string) (*model.PromptTemplate, error)
	Create(ctx context.Context, tpl *model.PromptTemplate) error
	Update(ctx context.Context, tpl *model.PromptTemplate) error
}

// Seed installs the default template catalog. Absent keys are created
// verbatim. Existing keys are never overwritten; they only receive a narrow
// structural migration: the two generation prompts gain the instruction
// placeholder block if it is missing, and empty Instructions/Rules fields are
// filled from the defaults. Running Seed twice is a no-op the second time.
func Seed(ctx context.Context, store SeedStore, defs []Definition, systemUser string) (created, existing int, err error) {
	for _, def := range defs {
		current, ferr := store.FindByKey(ctx, def.Key)
		if ferr != nil {
			return created, existing, fmt.Errorf("seed: lookup %q: %w", def.Key, ferr)
		}

		if current == nil {
			tpl := &model.PromptTemplate{
				Key:          def.Key,
				Title:        def.Title,
				Description:  def.Description,
				Content:      def.Content,
				Instructions: def.Instructions,
				Rules:        def.Rules,
				Category:     def.Category,
				PromptType:   def.PromptType,
				IsActive:     true,
				CreatedBy:    systemUser,
				UpdatedBy:    systemUser,
			}
			if cerr := store.Create(ctx, tpl); cerr != nil {
				log.Printf("[seed] key=%s create failed: %v", def.Key, cerr)
				continue
			}
			log.Printf("[seed] key=%s created category=%s", def.Key, def.Category)
			created++
			continue
		}

		changed := migrateTemplate(current, def)
		if changed {
			current.UpdatedBy = systemUser
			if uerr := store.Update(ctx, current); uerr != nil {
				return created, existing, fmt.Errorf("seed: update %q: %w", def.Key, uerr)
			}
			log.Printf("[seed] key=%s migrated", def.Key)
		}
		existing++
	}
	return created, existing, nil
}

// migrateTemplate applies the in-place migration to an existing template and
// reports whether anything changed. Operator edits to Content (other than the
// missing placeholder block) and non-empty Instructions/Rules are preserved.
func migrateTemplate(tpl *model.PromptTemplate, def Definition) bool {
	changed := false

	if tpl.Key == KeyGenerationWithImages || tpl.Key == KeyGenerationSimple {
		if updated, ok := splicePlaceholderBlock(tpl.Content); ok {
			tpl.Content = updated
			changed = true
		}
	}

	if def.Instructions != "" && tpl.Instructions == "" {
		tpl.Instructions = def.Instructions
		changed = true
	}
	if def.Rules != "" && tpl.Rules == "" {
		tpl.Rules = def.Rules
		changed = true
	}
	return changed
}

// splicePlaceholderBlock inserts the {instructions}/{rules} block into a
// generation prompt that predates it. The block goes just before the
// "Generate prompts for the following" line when present, otherwise before
// the "Respond ONLY in valid JSON" line. Content already carrying both
// placeholders is left alone.
func splicePlaceholderBlock(content string) (string, bool) {
	if strings.Contains(content, "{instructions}") && strings.Contains(content, "{rules}") {
		return content, false
	}

	if idx := strings.Index(content, anchorGeneratePrompts); idx >= 0 {
		head := content[:idx]
		if !strings.Contains(head, "{instructions}") && !strings.Contains(head, "{rules}") {
			return strings.TrimRight(head, " \t\n") + "\n\n" + placeholderBlock + "\n\n" + content[idx:], true
		}
		return content, false
	}

	if !strings.Contains(content, "{instructions}") {
		if idx := strings.Index(content, anchorRespondJSON); idx >= 0 {
			return content[:idx] + placeholderBlock + "\n\n" + content[idx:], true
		}
	}
	return content, false
}
