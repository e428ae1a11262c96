package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newRegisterCmd() *cobra.Command {
	var req struct {
		DNI         string `json:"dni"`
		Nombres     string `json:"nombres"`
		Apellidos   string `json:"apellidos,omitempty"`
		Institucion string `json:"institucion,omitempty"`
		Puesto      string `json:"puesto,omitempty"`
		Correo      string `json:"correo,omitempty"`
		Pais        string `json:"pais,omitempty"`
		Descripcion string `json:"descripcion,omitempty"`
		EstadoPago  string `json:"estado_pago,omitempty"`
		SedeAlta    string `json:"sede_alta,omitempty"`
	}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register an attendee, or update the one with the same DNI",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result RegisterResult

			if err := client.Post("/api/register", req, &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.DNI, "dni", "", "Identity document (required)")
	cmd.Flags().StringVar(&req.Nombres, "nombres", "", "First names (required)")
	cmd.Flags().StringVar(&req.Apellidos, "apellidos", "", "Last names")
	cmd.Flags().StringVar(&req.Institucion, "institucion", "", "Institution")
	cmd.Flags().StringVar(&req.Puesto, "puesto", "", "Position")
	cmd.Flags().StringVar(&req.Correo, "correo", "", "Email")
	cmd.Flags().StringVar(&req.Pais, "pais", "", "Country")
	cmd.Flags().StringVar(&req.Descripcion, "descripcion", "", "Free-text notes")
	cmd.Flags().StringVar(&req.EstadoPago, "estado-pago", "", "Payment status (PAGADO or NO_PAGADO)")
	cmd.Flags().StringVar(&req.SedeAlta, "sede-alta", "", "Registration site (default: station site)")
	_ = cmd.MarkFlagRequired("dni")
	_ = cmd.MarkFlagRequired("nombres")

	return cmd
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Bulk import attendees from a .csv or .json file",
		Long: `Bulk import attendees. A CSV file needs a header row; a JSON file holds
an array of objects or {"records": [...]}. Column names are matched
loosely, so "Documento", "Estado pago" or "Correo electrónico" work.

Requires the admin token.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := ReadImportFile(args[0])
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return fmt.Errorf("%s has no records", args[0])
			}

			var result ImportResult
			body := map[string]any{"records": records}
			if err := client.PostAdmin("/api/import", body, &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newAttendeeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attendee <uuid>",
		Short: "Show an attendee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result AttendeeResult

			if err := client.Get("/api/attendee/"+url.PathEscape(args[0]), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSearchCmd() *cobra.Command {
	var by string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search attendees by uuid, dni, correo or nombre",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result SearchResult

			q := url.Values{"by": {by}, "q": {args[0]}}
			if err := client.Get("/api/search", q, &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&by, "by", "nombre", "Field to match: uuid, dni, correo, nombre")

	return cmd
}
