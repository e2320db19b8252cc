// Comando socisctl: herramienta de administración por terminal.
//
// Habla directo con la base (no con el server HTTP), así que sirve
// incluso con el sitio caído: gestión de permisos, carga de desafíos
// de Roboticon y export de la lista del newsletter.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/socis-ca/website/internal/config"
	"github.com/socis-ca/website/internal/domain/repository"
	"github.com/socis-ca/website/internal/domain/types"
	"github.com/socis-ca/website/internal/observability/logger"
	"github.com/socis-ca/website/internal/store/pg"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	var st *pg.Store

	root := &cobra.Command{
		Use:          "socisctl",
		Short:        "Administración del sitio por terminal (directo a la base)",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if cfg.Storage.DSN == "" {
				return fmt.Errorf("storage.dsn vacío (o seteá SOCIS_DB_DSN)")
			}
			logger.Init(logger.Config{Env: cfg.App.Env, Level: "warn", ServiceName: "socisctl"})
			st, err = pg.New(cmd.Context(), cfg.Storage.DSN, pg.Tuning{MaxConns: 2})
			return err
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if st != nil {
				st.Close()
			}
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "path al YAML de configuración")

	// ─── users ───
	usersCmd := &cobra.Command{Use: "users", Short: "Gestión de usuarios y permisos"}

	usersCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Lista los usuarios registrados",
		RunE: func(cmd *cobra.Command, _ []string) error {
			us, err := st.Users().List(cmd.Context(), repository.ListUsersFilter{Limit: 200})
			if err != nil {
				return err
			}
			for _, u := range us {
				fmt.Printf("%-24s %-32s perms=%s\n", u.AccountID, u.Email, u.Permissions.String())
			}
			fmt.Printf("%d usuarios\n", len(us))
			return nil
		},
	})

	usersCmd.AddCommand(&cobra.Command{
		Use:   "set-perms <account-id> <bitmask>",
		Short: "Reemplaza el bitmask de permisos (ej: 17 = events|admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mask, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("bitmask inválido: %q", args[1])
			}
			perms := types.Permission(mask)
			if err := st.Users().SetPermissions(cmd.Context(), args[0], perms); err != nil {
				return err
			}
			fmt.Printf("%s -> %s\n", args[0], perms.String())
			return nil
		},
	})

	// ─── roboticon ───
	roboticonCmd := &cobra.Command{Use: "roboticon", Short: "Carga y publicación de desafíos"}

	var challengeJSON string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Crea un desafío desde JSON (arranca oculto)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in struct {
				ChallengeNumber int    `json:"challenge_number"`
				Description     string `json:"description"`
				Goal            string `json:"goal"`
				Parameters      string `json:"parameters"`
				Points          string `json:"points"`
				ImagePath       string `json:"image_path"`
				MapPath         string `json:"map_path"`
				Year            int    `json:"year"`
			}
			if err := json.Unmarshal([]byte(challengeJSON), &in); err != nil {
				return fmt.Errorf("parseando --json: %w", err)
			}
			if in.Year == 0 {
				in.Year = time.Now().Year()
			}
			created, err := st.Challenges().Create(cmd.Context(), &repository.Challenge{
				ChallengeNumber: in.ChallengeNumber,
				Description:     in.Description,
				Goal:            in.Goal,
				Parameters:      in.Parameters,
				Points:          in.Points,
				ImagePath:       in.ImagePath,
				MapPath:         in.MapPath,
				Hidden:          true,
				Year:            in.Year,
			})
			if err != nil {
				return err
			}
			fmt.Printf("creado %s (#%d, %d, oculto)\n", created.ID, created.ChallengeNumber, created.Year)
			return nil
		},
	}
	addCmd.Flags().StringVar(&challengeJSON, "json", "", "desafío en JSON")
	_ = addCmd.MarkFlagRequired("json")
	roboticonCmd.AddCommand(addCmd)

	roboticonCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Lista todos los desafíos, ocultos incluidos",
		RunE: func(cmd *cobra.Command, _ []string) error {
			chs, err := st.Challenges().List(cmd.Context(), repository.ChallengeFilter{IncludeHidden: true, Limit: 200})
			if err != nil {
				return err
			}
			for _, ch := range chs {
				state := "publicado"
				if ch.Hidden {
					state = "oculto"
				}
				fmt.Printf("%-38s %d #%-3d %-10s %s\n", ch.ID, ch.Year, ch.ChallengeNumber, state, ch.Goal)
			}
			return nil
		},
	})

	roboticonCmd.AddCommand(&cobra.Command{
		Use:   "publish <id>",
		Short: "Publica un desafío oculto",
		Args:  cobra.ExactArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return setHidden(cmd.Context(), st, args[0], false) },
	})
	roboticonCmd.AddCommand(&cobra.Command{
		Use:   "hide <id>",
		Short: "Oculta un desafío publicado",
		Args:  cobra.ExactArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return setHidden(cmd.Context(), st, args[0], true) },
	})

	// ─── newsletter ───
	newsletterCmd := &cobra.Command{Use: "newsletter", Short: "Lista del newsletter"}
	newsletterCmd.AddCommand(&cobra.Command{
		Use:   "export",
		Short: "Vuelca la lista completa de suscriptores a stdout (CSV)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Println("email,subscribed_at")
			for offset := 0; ; offset += 200 {
				subs, err := st.Subscribers().List(cmd.Context(), 200, offset)
				if err != nil {
					return err
				}
				for _, s := range subs {
					fmt.Printf("%s,%s\n", s.Email, s.SubscribedAt.Format(time.RFC3339))
				}
				if len(subs) < 200 {
					return nil
				}
			}
		},
	})

	root.AddCommand(usersCmd, roboticonCmd, newsletterCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func setHidden(ctx context.Context, st *pg.Store, id string, hidden bool) error {
	ch, err := st.Challenges().GetByID(ctx, id)
	if err != nil {
		return err
	}
	ch.Hidden = hidden
	if err := st.Challenges().Update(ctx, ch); err != nil {
		return err
	}
	state := "publicado"
	if hidden {
		state = "oculto"
	}
	fmt.Printf("%s ahora está %s\n", id, state)
	return nil
}
