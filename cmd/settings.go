package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pakarguru/modulajar/internal/ui/theme"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the links printed with generated modules",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		repo := st.SettingsRepo()
		s, err := repo.Get(cmd.Context(), cfg.Defaults.AppSettings())
		if err != nil {
			return err
		}

		f := cmd.Flags()
		changed := false
		for name, dst := range map[string]*string{
			"promo-link":   &s.PromoLink,
			"whatsapp":     &s.WhatsAppNumber,
			"social-media": &s.SocialMediaLink,
		} {
			if f.Changed(name) {
				*dst, _ = f.GetString(name)
				changed = true
			}
		}
		if changed {
			if err := repo.Save(cmd.Context(), s); err != nil {
				return err
			}
		}

		fmt.Println(theme.Card.Render(fmt.Sprintf("%s %s\n%s %s\n%s %s",
			theme.Label.Render("Promo:    "), orDash(s.PromoLink),
			theme.Label.Render("WhatsApp: "), orDash(s.WhatsAppNumber),
			theme.Label.Render("Sosmed:   "), orDash(s.SocialMediaLink),
		)))
		return nil
	},
}

func init() {
	settingsCmd.Flags().String("promo-link", "", "Promotion link")
	settingsCmd.Flags().String("whatsapp", "", "WhatsApp contact number")
	settingsCmd.Flags().String("social-media", "", "Social media link")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
