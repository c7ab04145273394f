package prompt

import (
	"context"
	"log"
	"strings"

	"github.com/ornastudio/ornament-backend/internal/model"
)

// Anchor phrases used when instructions/rules have to be spliced into a
// template whose content does not reference them via placeholders.
const (
	anchorGeneratePrompts = "Generate prompts for the following"
	anchorRespondJSON     = "Respond ONLY in valid JSON"
)

// TemplateSource looks up active templates by key. Absent and inactive
// templates are both reported as not found.
type TemplateSource interface {
	FindActiveByKey(ctx context.Context, key string) (*model.PromptTemplate, error)
}

// Resolver turns a template key plus runtime variables into a final prompt
// string. It consults the template store first and falls back to the
// caller-supplied default when the key is absent, inactive, or the store
// errors. Resolve never fails: a broken prompt with visible placeholders is
// preferable to failing the whole generation request.
type Resolver struct {
	store TemplateSource
}

func NewResolver(store TemplateSource) *Resolver {
	return &Resolver{store: store}
}

// Resolve resolves key against the store, merging instructions/rules and
// substituting {name} placeholders from vars. Caller-supplied instructions or
// rules win over the template's own only when explicitly passed.
func (r *Resolver) Resolve(ctx context.Context, key, defaultTemplate string, vars map[string]string) string {
	content := defaultTemplate
	instructions := ""
	rules := ""

	if r.store != nil {
		if tpl, err := r.store.FindActiveByKey(ctx, key); err == nil && tpl != nil {
			content = tpl.Content
			instructions = tpl.Instructions
			rules = tpl.Rules
		} else if err != nil {
			log.Printf("[prompt] key=%s stage=lookup_fallback err=%v", key, err)
		}
	}

	merged := make(map[string]string, len(vars)+2)
	for k, v := range vars {
		merged[k] = v
	}

	if strings.Contains(content, "{instructions}") || strings.Contains(content, "{rules}") {
		if _, ok := merged["instructions"]; !ok {
			merged["instructions"] = instructions
		}
		if _, ok := merged["rules"]; !ok {
			merged["rules"] = rules
		}
	} else if instructions != "" || rules != "" {
		content = spliceInstructionBlock(content, instructions, rules, merged["global_instruction_rule"])
	}

	formatted, missing := FormatPartial(content, merged)
	if len(missing) > 0 {
		log.Printf("[prompt] key=%s stage=partial_format missing=%v", key, missing)
	}
	return formatted
}

// spliceInstructionBlock inserts instructions and rules into content before
// the first known anchor phrase. When no anchor exists the block is appended.
func spliceInstructionBlock(content, instructions, rules, globalRule string) string {
	var block strings.Builder
	if instructions != "" {
		block.WriteString("\n\n")
		block.WriteString(instructions)
	}
	if rules != "" {
		block.WriteString("\n\n")
		block.WriteString(rules)
	}
	if globalRule != "" {
		block.WriteString("\n")
		block.WriteString(globalRule)
	}
	insertion := block.String()
	if insertion == "" {
		return content
	}

	if idx := strings.Index(content, anchorGeneratePrompts); idx >= 0 {
		head := strings.TrimRight(content[:idx], " \t\n")
		return head + insertion + "\n\n" + content[idx:]
	}
	if idx := strings.Index(content, anchorRespondJSON); idx >= 0 {
		return content[:idx] + insertion + "\n\n" + content[idx:]
	}
	return strings.TrimRight(content, " \t\n") + insertion
}
