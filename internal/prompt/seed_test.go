package prompt

import (
	"context"
	"strings"
	"testing"

	"github.com/ornastudio/ornament-backend/internal/model"
)

type fakeSeedStore struct {
	tpls    map[string]*model.PromptTemplate
	creates int
	updates int
}

func newFakeSeedStore() *fakeSeedStore {
	return &fakeSeedStore{tpls: map[string]*model.PromptTemplate{}}
}

func (f *fakeSeedStore) FindByKey(_ context.Context, key string) (*model.PromptTemplate, error) {
	return f.tpls[key], nil
}

func (f *fakeSeedStore) Create(_ context.Context, tpl *model.PromptTemplate) error {
	f.tpls[tpl.Key] = tpl
	f.creates++
	return nil
}

func (f *fakeSeedStore) Update(_ context.Context, tpl *model.PromptTemplate) error {
	f.tpls[tpl.Key] = tpl
	f.updates++
	return nil
}

func TestSeedIsIdempotent(t *testing.T) {
	store := newFakeSeedStore()
	defs := DefaultDefinitions()

	created, existing, err := Seed(context.Background(), store, defs, "system")
	if err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if created != len(defs) || existing != 0 {
		t.Fatalf("first run: created=%d existing=%d want %d/0", created, existing, len(defs))
	}

	snapshot := map[string]string{}
	for key, tpl := range store.tpls {
		snapshot[key] = tpl.Content + "\x00" + tpl.Instructions + "\x00" + tpl.Rules
	}

	created, existing, err = Seed(context.Background(), store, defs, "system")
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if created != 0 || existing != len(defs) {
		t.Fatalf("second run: created=%d existing=%d want 0/%d", created, existing, len(defs))
	}
	if store.updates != 0 {
		t.Fatalf("second run touched %d templates", store.updates)
	}
	for key, tpl := range store.tpls {
		if snapshot[key] != tpl.Content+"\x00"+tpl.Instructions+"\x00"+tpl.Rules {
			t.Fatalf("template %s drifted on second run", key)
		}
	}
}

func TestSeedMigratesLegacyGenerationPrompt(t *testing.T) {
	store := newFakeSeedStore()
	store.tpls[KeyGenerationSimple] = &model.PromptTemplate{
		Key:     KeyGenerationSimple,
		Content: "Describe the collection.\n\nGenerate prompts for the following 4 types.",
		Rules:   "operator-written rules",
	}

	if _, _, err := Seed(context.Background(), store, DefaultDefinitions(), "system"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	tpl := store.tpls[KeyGenerationSimple]
	iBlock := strings.Index(tpl.Content, "{instructions}\n\n{rules}\n{global_instruction_rule}")
	iAnchor := strings.Index(tpl.Content, "Generate prompts for the following")
	if iBlock < 0 || iAnchor < 0 || iBlock > iAnchor {
		t.Fatalf("placeholder block not spliced before anchor: %q", tpl.Content)
	}
	if tpl.Instructions == "" {
		t.Fatalf("empty instructions should be filled from defaults")
	}
	if tpl.Rules != "operator-written rules" {
		t.Fatalf("non-empty rules overwritten: %q", tpl.Rules)
	}
}

func TestSeedLeavesEditedTemplatesAlone(t *testing.T) {
	store := newFakeSeedStore()
	edited := "Operator rewrote this completely. {prompt_text}"
	store.tpls[KeyWhiteBackgroundTemplate] = &model.PromptTemplate{
		Key:     KeyWhiteBackgroundTemplate,
		Content: edited,
	}

	if _, _, err := Seed(context.Background(), store, DefaultDefinitions(), "system"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if store.tpls[KeyWhiteBackgroundTemplate].Content != edited {
		t.Fatalf("non-migration template content was modified")
	}
}

func TestSplicePlaceholderBlockRespondAnchor(t *testing.T) {
	content := "Analyze inputs. Respond ONLY in valid JSON:\n{}"
	out, changed := splicePlaceholderBlock(content)
	if !changed {
		t.Fatalf("expected splice")
	}
	iBlock := strings.Index(out, "{instructions}")
	iAnchor := strings.Index(out, "Respond ONLY in valid JSON")
	if iBlock < 0 || iBlock > iAnchor {
		t.Fatalf("block not before anchor: %q", out)
	}

	// Already migrated content is left alone.
	if _, changed := splicePlaceholderBlock(out + "\n{rules}"); changed {
		t.Fatalf("second splice should be a no-op")
	}
}
