package prompt

// Template keys referenced by the generation flows.
const (
	KeySuggestionBase            = "suggestion_prompt_base"
	KeyGenerationWithImages      = "generation_prompt_with_images"
	KeyGenerationSimple          = "generation_prompt_simple"
	KeyWhiteBackgroundTemplate   = "white_background_template"
	KeyBackgroundReplaceTemplate = "background_replace_template"
	KeyModelImageTemplate        = "model_image_template"
	KeyCampaignImageTemplate     = "campaign_image_template"

	KeyRegenerateWhite    = "regenerate_white_background_template"
	KeyRegenerateBg       = "regenerate_background_replace_template"
	KeyRegenerateModel    = "regenerate_model_image_template"
	KeyRegenerateCampaign = "regenerate_campaign_image_template"

	KeyRegenerateModsWhite    = "regenerate_with_modifications_white"
	KeyRegenerateModsBg       = "regenerate_with_modifications_bg"
	KeyRegenerateModsModel    = "regenerate_with_modifications_model"
	KeyRegenerateModsCampaign = "regenerate_with_modifications_campaign"

	KeyImagesWhiteBackground         = "images_white_background"
	KeyImagesBackgroundChangeBase    = "images_background_change_base"
	KeyImagesBackgroundChangeColor   = "images_background_change_with_color"
	KeyImagesBackgroundChangeDefault = "images_background_change_default"
	KeyImagesModelWithOrnament       = "images_model_with_ornament"
	KeyImagesRealModelWithOrnament   = "images_real_model_with_ornament"
	KeyImagesCampaignShotAI          = "images_campaign_shot_ai"
	KeyImagesCampaignShotReal        = "images_campaign_shot_real"
)

const (
	CategorySuggestion = "suggestion"
	CategoryGeneration = "generation"
	CategoryTemplate   = "template"
	CategoryImages     = "images"
)

// Definition is one seedable template. Seeding creates absent keys verbatim
// and only narrowly migrates existing ones (see Seed).
type Definition struct {
	Key          string
	Title        string
	Description  string
	Content      string
	Instructions string
	Rules        string
	Category     string
	PromptType   string
}

// DefaultContent returns the shipped content for key, or "" for unknown keys.
// Used as the resolver fallback when the store has no active template.
func DefaultContent(key string) string {
	for _, def := range DefaultDefinitions() {
		if def.Key == key {
			return def.Content
		}
	}
	return ""
}

// DefaultDefinitions is the catalog of system templates. Content is the
// shipped default; operators edit copies in the store without redeploys.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			Key:         KeySuggestionBase,
			Title:       "Suggestion Generation Base Prompt",
			Description: "Base prompt for generating visual suggestions (themes, backgrounds, poses, locations, colors) from collection description",
			Content: `You are a highly skilled AI creative director and visual concept designer.
Your job is to generate structured, high-quality visual prompt suggestions for an AI image generation system.

Analyze the following inputs carefully:

Collection Description:
{description}

Target Audience (if provided):
{target_audience}

Campaign Season (if provided):
{campaign_season}

Your goal:
Create imaginative yet relevant visual concepts that perfectly match the product collection's description,
appeal to the specified audience, and align with the campaign season's mood, trends, and aesthetics.

Instructions:
1. Think of this as preparing visual ideas for a brand campaign or photoshoot.
2. Consider the overall tone, cultural context, and emotional appeal suited for the audience and season.
3. Make sure the ideas are cohesive and realistic to implement in a fashion/product photography or advertising context.
4. Each category must contain short, descriptive, and clear prompts suitable for use with AI image generation tools.

Generate JSON containing 5 types:
- Themes
- Backgrounds/Backdrops
- Poses
- Locations
- Color palettes

Limit 10 prompts per category.`,
			Category:   CategorySuggestion,
			PromptType: "suggestion_prompt",
		},
		{
			Key:         KeyGenerationWithImages,
			Title:       "Generation Prompt with Uploaded Images",
			Description: "Prompt for generating image prompts when user has uploaded reference images",
			Content: `You are a professional creative AI assistant specializing in product photography and marketing. You have been provided with a collection description and user-uploaded reference images that should be analyzed in detail to create highly specific and targeted image generation prompts.

COLLECTION DESCRIPTION: {collection_description}

USER-UPLOADED REFERENCE IMAGES (ANALYZE THESE IN DETAIL):
{uploaded_images_analysis}

SELECTED SUGGESTIONS (use only for categories without uploaded images):
Themes: {themes}
Backgrounds: {backgrounds}
Poses: {poses}
Locations: {locations}
Colors: {colors}{picked_colors_info}{global_instructions_info}

{instructions}

{rules}
{global_instruction_rule}

Generate prompts for the following 4 types. Respond ONLY in valid JSON:
{{
    "white_background": "Detailed prompt for white background product photography incorporating visual elements from uploaded images",
    "background_replace": "Detailed prompt for themed background images that match the style and aesthetic of uploaded reference images",
    "model_image": "Detailed prompt for realistic model photography incorporating poses, expressions, and styling from uploaded reference images",
    "campaign_image": "Detailed prompt for campaign shots that capture the mood, composition, and visual style of uploaded reference images"
}}`,
			Instructions: `# INSTRUCTIONS:
# 1. For categories with uploaded images, analyze the visual content, style, mood, lighting, composition, and aesthetic elements from the uploaded images
# 2. Extract specific visual details like color palettes, textures, lighting conditions, composition styles, and mood from the uploaded images
# 3. For categories without uploaded images, use the selected suggestions
# 4. Create prompts that incorporate the visual elements and style from uploaded images
# 5. Ensure prompts are specific, detailed, and actionable for AI image generation`,
			Rules: `RULES FOR PROMPT CREATION:
1. PRIORITIZE analysis of uploaded images. Extract their style, lighting, camera composition, colors, and artistic tone.
2. For missing categories, use the user's selected text inputs.
3. Blend both to create cohesive, brand-consistent image prompts.
4. Be specific — describe lighting, materials, perspective, model type, emotion, and background details.
5. Keep prompts actionable and detailed for AI image generation systems.
6. COLOR PRIORITY: If picked colors are provided, use them as the primary color scheme. If only selected suggestions are provided, use those instead.`,
			Category:   CategoryGeneration,
			PromptType: "generation_prompt",
		},
		{
			Key:         KeyGenerationSimple,
			Title:       "Generation Prompt Simple (No Images)",
			Description: "Prompt for generating image prompts when user has not uploaded reference images",
			Content: `You are a professional creative AI assistant. Analyze the collection description and user selections carefully and generate structured image generation prompts.

Collection Description: {collection_description}
Selected Themes: {themes}
Selected Backgrounds: {backgrounds}
Selected Poses: {poses}
Selected Locations: {locations}
Selected Colors: {colors}{picked_colors_info}{global_instructions_info}

{instructions}

{rules}
{global_instruction_rule}

Generate prompts for the following 4 types. Respond ONLY in valid JSON:
{{
    "white_background": "Prompt for white background images of the product, sharp, clean, isolated.",
    "background_replace": "Prompt for images with themed backgrounds while keeping the product identical.",
    "model_image": "Prompt to generate realistic model wearing/holding the product. Model face and body must be accurate. Match selected poses and expressions, photo should be focused mainly on the product.",
    "campaign_image": "Prompt for campaign/promotional shots with models and products in themed backgrounds, stylish composition."
}}`,
			Instructions: `# INSTRUCTIONS:
# 1. Analyze the collection description and user selections carefully
# 2. Create prompts that are specific, detailed, and actionable for AI image generation
# 3. Ensure prompts match the selected themes, backgrounds, poses, locations, and colors
# 4. Maintain consistency across all four prompt types
# 5. Focus on product clarity and professional photography standards`,
			Rules: `RULES FOR PROMPT CREATION:
1. Use the selected themes, backgrounds, poses, locations, and colors as primary guidance
2. Be specific — describe lighting, materials, perspective, model type, emotion, and background details
3. Keep prompts actionable and detailed for AI image generation systems
4. COLOR PRIORITY: If picked colors are provided, use them as the primary color scheme. If only selected suggestions are provided, use those instead
5. Ensure all prompts maintain brand consistency and professional quality
6. Model images must have accurate facial features and body proportions`,
			Category:   CategoryGeneration,
			PromptType: "generation_prompt",
		},
		{
			Key:         KeyWhiteBackgroundTemplate,
			Title:       "White Background Image Generation Template",
			Description: "Template prompt for generating white background product images",
			Content: `Do NOT modify, alter, or redesign the product in any way — its color, shape, texture, and proportions must remain exactly the same.(important dont change the product image)
Generate a high-quality product photo on a clean, elegant white studio background.
The product should appear exactly as in the input image, only placed against a professional white background.
Ensure balanced, soft studio lighting with natural shadows and realistic reflections.
Highlight product clarity and detail.
Follow this specific style prompt: {prompt_text}`,
			Category:   CategoryTemplate,
			PromptType: "white_background",
		},
		{
			Key:         KeyBackgroundReplaceTemplate,
			Title:       "Background Replace Image Generation Template",
			Description: "Template prompt for replacing product backgrounds",
			Content: `Replace only the background of the product image with one that enhances and highlights the ornament elegantly.
Do NOT modify the product itself — preserve its original look, proportions, color, and texture exactly.
The new background should create a professional photo-shoot vibe with proper lighting, depth, and composition.
Ensure the product is the focal point of the frame and stands out naturally under studio lighting.
Use soft shadows, realistic reflections, and balanced highlights.
Follow this specific style prompt: {prompt_text}`,
			Category:   CategoryTemplate,
			PromptType: "background_replace",
		},
		{
			Key:         KeyModelImageTemplate,
			Title:       "Model Image Generation Template",
			Description: "Template prompt for generating model images with products",
			Content: `Generate a realistic photo of the uploaded model (where the uploaded model is present in the model_image_path should be exactly the same) wearing ONLY the given product (such as an ornament or jewelry).
Do NOT modify the product design or appearance. It must look identical to the provided product image.
Ensure the product fits the model naturally and proportionally, with correct placement and lighting consistency.
The overall image should have the quality of a professional fashion photo shoot with soft studio lighting and elegant composition.
Follow this specific style prompt: {prompt_text}`,
			Category:   CategoryTemplate,
			PromptType: "model_image",
		},
		{
			Key:         KeyCampaignImageTemplate,
			Title:       "Campaign Image Generation Template",
			Description: "Template prompt for generating campaign-style images",
			Content: `Create a professional campaign-style image where the uploaded model (where the uploaded model is present in the model_image_path should be exactly the same) is wearing ONLY the given product,
keeping the product exactly as it appears in the original product image — no changes in color, shape, or design.
Use a lifestyle or editorial-style background that enhances the brand aesthetic while maintaining focus on the product.
Ensure cinematic yet natural studio lighting, soft shadows, and high-end magazine-quality realism.
Follow this specific style prompt: {prompt_text}`,
			Category:   CategoryTemplate,
			PromptType: "campaign_image",
		},
		{
			Key:         KeyRegenerateWhite,
			Title:       "Regenerate White Background Template",
			Description: "Template for regenerating white background images",
			Content: `Generate a high-quality product photo on a clean, elegant white studio background.
Do NOT modify the product - keep its color, shape, texture exactly the same.
{original_prompt}`,
			Category:   CategoryTemplate,
			PromptType: "white_background",
		},
		{
			Key:         KeyRegenerateBg,
			Title:       "Regenerate Background Replace Template",
			Description: "Template for regenerating background replace images",
			Content: `Replace only the background elegantly while keeping the product identical.
{original_prompt}`,
			Category:   CategoryTemplate,
			PromptType: "background_replace",
		},
		{
			Key:         KeyRegenerateModel,
			Title:       "Regenerate Model Image Template",
			Description: "Template for regenerating model images",
			Content: `Generate a realistic photo of the model wearing ONLY the given product.
Keep the product design identical to the original.
{original_prompt}`,
			Category:   CategoryTemplate,
			PromptType: "model_image",
		},
		{
			Key:         KeyRegenerateCampaign,
			Title:       "Regenerate Campaign Image Template",
			Description: "Template for regenerating campaign images",
			Content: `Create a professional campaign-style image with the model wearing ONLY the product.
Keep the product exactly as it appears in the original.
{original_prompt}`,
			Category:   CategoryTemplate,
			PromptType: "campaign_image",
		},
		{
			Key:         KeyRegenerateModsWhite,
			Title:       "Regenerate White Background with Modifications",
			Description: "Template for regenerating white background images with user modifications",
			Content: `Generate a high-quality product photo on a clean, elegant white studio background.
Do NOT modify the product - keep its color, shape, texture exactly the same.
Original style: {original_prompt}.
Modifications: {new_prompt}`,
			Category:   CategoryTemplate,
			PromptType: "white_background",
		},
		{
			Key:         KeyRegenerateModsBg,
			Title:       "Regenerate Background Replace with Modifications",
			Description: "Template for regenerating background replace images with user modifications",
			Content: `Replace only the background elegantly while keeping the product identical.
Original style: {original_prompt}.
Modifications: {new_prompt}`,
			Category:   CategoryTemplate,
			PromptType: "background_replace",
		},
		{
			Key:         KeyRegenerateModsModel,
			Title:       "Regenerate Model Image with Modifications",
			Description: "Template for regenerating model images with user modifications",
			Content: `Generate a realistic photo of the model wearing ONLY the given product.
Keep the product design identical to the original.
Original style: {original_prompt}.
Modifications: {new_prompt}`,
			Category:   CategoryTemplate,
			PromptType: "model_image",
		},
		{
			Key:         KeyRegenerateModsCampaign,
			Title:       "Regenerate Campaign Image with Modifications",
			Description: "Template for regenerating campaign images with user modifications",
			Content: `Create a professional campaign-style image with the model wearing ONLY the product.
Keep the product exactly as it appears in the original.
Original style: {original_prompt}.
Modifications: {new_prompt}`,
			Category:   CategoryTemplate,
			PromptType: "campaign_image",
		},
		{
			Key:         KeyImagesWhiteBackground,
			Title:       "White Background Image Generation Prompt",
			Description: "Prompt for generating white background images from ornament uploads",
			Content:     "Remove the background from this ornament image and replace it with a plain {bg_color} background.{extra_prompt}",
			Category:    CategoryImages,
			PromptType:  "white_background",
		},
		{
			Key:         KeyImagesBackgroundChangeBase,
			Title:       "Background Change Base Prompt",
			Description: "Base prompt for changing ornament backgrounds",
			Content:     "Change the background of this ornament. {final_prompt}",
			Category:    CategoryImages,
			PromptType:  "background_replace",
		},
		{
			Key:         KeyImagesBackgroundChangeColor,
			Title:       "Background Change with Color Prompt",
			Description: "Prompt for background change when color is specified",
			Content:     "The background should be {bg_color}, but make sure to highlight the ornament and make it stand out and the background color should be the same as the {bg_color}.",
			Category:    CategoryImages,
			PromptType:  "background_replace",
		},
		{
			Key:         KeyImagesBackgroundChangeDefault,
			Title:       "Background Change Default Prompt",
			Description: "Default prompt for background change without color",
			Content:     "Change only the background without modifying the ornament.",
			Category:    CategoryImages,
			PromptType:  "background_replace",
		},
		{
			Key:         KeyImagesModelWithOrnament,
			Title:       "Model with Ornament Generation Prompt",
			Description: "Prompt for generating AI model images wearing ornaments",
			Content: `Generate a close-up, high-fashion portrait of an elegant Indian woman wearing this 100% real accurate uploaded ornament. Focus tightly on the neckline and jewelry area according to the ornament.
Ensure the jewelry fits naturally and realistically on the model.
Lighting should be soft and natural, highlighting the sparkle of the jewelry and the model's features.
Use a shallow depth of field with a softly blurred background that hints at an elegant setting.
Do not include any watermark, text, or unnatural effects.
{ornament_description}{measurements_text} Make sure to follow the measurements strictly.
mandatory consideration details: {user_prompt}`,
			Category:   CategoryImages,
			PromptType: "model_image",
		},
		{
			Key:         KeyImagesRealModelWithOrnament,
			Title:       "Real Model with Ornament Generation Prompt",
			Description: "Prompt for generating images of real uploaded models wearing ornaments",
			Content: `Generate a realistic, high-quality close-up image of the uploaded model wearing the exact uploaded ornament. Keep the model's face fully intact and recognizable.
Ensure the ornament fits naturally and realistically on the model.
Generate a background suitable for both the model and the ornament.
Lighting should be soft, natural, and elegant.
Focus tightly on the jewelry area.
Follow the pose from the uploaded pose image if provided.
{ornament_description}{measurements_text}Additional user instructions: {user_prompt}`,
			Category:   CategoryImages,
			PromptType: "model_image",
		},
		{
			Key:         KeyImagesCampaignShotAI,
			Title:       "Campaign Shot AI Model Prompt",
			Description: "Prompt for generating campaign shots with AI models",
			Content: `Generate a high-quality campaign image of a model wearing all the uploaded ornaments.
Use realistic lighting, texture, and cohesive fashion aesthetics.
Campaign instructions: {user_prompt}`,
			Category:   CategoryImages,
			PromptType: "campaign_image",
		},
		{
			Key:         KeyImagesCampaignShotReal,
			Title:       "Campaign Shot Real Model Prompt",
			Description: "Prompt for generating campaign shots with real uploaded models",
			Content: `Generate a realistic image of the uploaded real model wearing all the uploaded ornaments.
Preserve the model's facial features and natural pose while making a small smile.
Campaign instructions: {user_prompt}`,
			Category:   CategoryImages,
			PromptType: "campaign_image",
		},
	}
}
