package models

import "fmt"

// BioTheme styles a user's public bio page. Every field is a closed
// enumeration; Validate rejects anything outside it.
type BioTheme struct {
	Name            string `json:"name"`
	BackgroundType  string `json:"background_type"`  // solid, gradient, image
	BackgroundValue string `json:"background_value"` // color, gradient spec, or image URL
	ButtonStyle     string `json:"button_style"`     // rounded, pill, square, shadow
	ButtonColor     string `json:"button_color"`
	ButtonTextColor string `json:"button_text_color"`
	FontFamily      string `json:"font_family"`     // inter, poppins, dm_sans, playfair
	AnimationStyle  string `json:"animation_style"` // none, fade, slide, scale
}

// DefaultBioTheme is what a user gets before saving a theme.
func DefaultBioTheme() BioTheme {
	return BioTheme{
		Name:            "default",
		BackgroundType:  "solid",
		BackgroundValue: "#0f172a",
		ButtonStyle:     "rounded",
		ButtonColor:     "#2563eb",
		ButtonTextColor: "#ffffff",
		FontFamily:      "inter",
		AnimationStyle:  "none",
	}
}

var (
	backgroundTypes = map[string]bool{"solid": true, "gradient": true, "image": true}
	buttonStyles    = map[string]bool{"rounded": true, "pill": true, "square": true, "shadow": true}
	fontFamilies    = map[string]bool{"inter": true, "poppins": true, "dm_sans": true, "playfair": true}
	animationStyles = map[string]bool{"none": true, "fade": true, "slide": true, "scale": true}
)

// Validate checks every enumerated field.
func (t *BioTheme) Validate() error {
	if !backgroundTypes[t.BackgroundType] {
		return fmt.Errorf("invalid background_type %q", t.BackgroundType)
	}
	if !buttonStyles[t.ButtonStyle] {
		return fmt.Errorf("invalid button_style %q", t.ButtonStyle)
	}
	if !fontFamilies[t.FontFamily] {
		return fmt.Errorf("invalid font_family %q", t.FontFamily)
	}
	if !animationStyles[t.AnimationStyle] {
		return fmt.Errorf("invalid animation_style %q", t.AnimationStyle)
	}
	return nil
}
