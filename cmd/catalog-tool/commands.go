package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"county-map/internal/catalog"
	"county-map/internal/geojson"
	"county-map/internal/migrate"
	"county-map/internal/overlay"
	"county-map/internal/selection"
	"county-map/internal/store"
	"county-map/internal/utils"
)

// 配置项：命令行参数 > 环境变量 > 配置文件
func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string
	root := &cobra.Command{
		Use:          "catalog-tool",
		Short:        "Validate, export and import the county catalog",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile != "" {
				v.SetConfigFile(cfgFile)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("read config: %w", err)
				}
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml/json/toml)")
	root.PersistentFlags().String("source", "embedded", "catalog source: embedded|geojson|postgres")
	root.PersistentFlags().String("geojson", "", "county boundary GeoJSON file")
	_ = v.BindPFlag("source", root.PersistentFlags().Lookup("source"))
	_ = v.BindPFlag("geojson", root.PersistentFlags().Lookup("geojson"))
	_ = v.BindEnv("source", "CATALOG_SOURCE")
	_ = v.BindEnv("geojson", "COUNTY_GEOJSON_PATH")

	root.AddCommand(validateCmd(v), exportCmd(v), importCmd(v))
	return root
}

func loadFrom(ctx context.Context, v *viper.Viper) (*catalog.Catalog, error) {
	return utils.LoadCatalog(ctx, v.GetString("source"), v.GetString("geojson"))
}

func validateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load the catalog and report membership inconsistencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadFrom(cmd.Context(), v)
			if err != nil {
				return err
			}
			rep := cat.CheckMembership()
			printReport(cmd.OutOrStdout(), cat, rep)
			if v.GetBool("strict") && !rep.Clean() {
				return fmt.Errorf("membership report not clean")
			}
			return nil
		},
	}
	cmd.Flags().Bool("strict", false, "fail when the membership report is not clean")
	_ = v.BindPFlag("strict", cmd.Flags().Lookup("strict"))
	return cmd
}

func printReport(w io.Writer, cat *catalog.Catalog, rep catalog.MembershipReport) {
	fmt.Fprintf(w, "counties: %d\nregions: %d\ncities: %d\nfingerprint: %s\n",
		cat.Len(), len(cat.Regions()), len(cat.Cities()), cat.Fingerprint())
	fmt.Fprintf(w, "unassigned: %v\n", rep.Unassigned)
	for county, regions := range rep.MultiRegion {
		fmt.Fprintf(w, "multi-region: %s %v\n", county, regions)
	}
	fmt.Fprintf(w, "unknown members: %v\n", rep.UnknownMembers)
	fmt.Fprintf(w, "unknown regions: %v\n", rep.UnknownRegions)
	for city, regions := range rep.DuplicateCities {
		fmt.Fprintf(w, "duplicate city: %s %v\n", city, regions)
	}
}

func exportCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write counties, regions or cities as GeoJSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadFrom(cmd.Context(), v)
			if err != nil {
				return err
			}
			var fc *geojson.FeatureCollection
			switch layer := v.GetString("layer"); layer {
			case "counties":
				fc = geojson.Counties(selection.New(cat, nil).Layers(), "")
			case "regions":
				fc = geojson.Regions(overlay.Layers(cat))
			case "cities":
				fc = geojson.Cities(cat.Cities())
			default:
				return fmt.Errorf("unknown layer %q", layer)
			}
			b, err := geojson.Marshal(fc)
			if err != nil {
				return err
			}
			out := v.GetString("out")
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(b)
				return err
			}
			return os.WriteFile(out, b, 0o644)
		},
	}
	cmd.Flags().String("layer", "counties", "counties|regions|cities")
	cmd.Flags().StringP("out", "o", "-", "output file, - for stdout")
	_ = v.BindPFlag("layer", cmd.Flags().Lookup("layer"))
	_ = v.BindPFlag("out", cmd.Flags().Lookup("out"))
	return cmd
}

func importCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the catalog tables in PostgreSQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if v.GetString("source") == "postgres" {
				return fmt.Errorf("import source must not be postgres")
			}
			cat, err := loadFrom(ctx, v)
			if err != nil {
				return err
			}
			dsn := v.GetString("dsn")
			if dsn == "" {
				dsn = utils.BuildPostgresDSNFromEnv()
			}
			st, err := store.Open(dsn)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := migrate.EnsureSchema(ctx, st.DB()); err != nil {
				return fmt.Errorf("schema: %w", err)
			}
			if err := st.SaveCatalog(ctx, cat.Source()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d counties (%s)\n", cat.Len(), cat.Fingerprint())
			return nil
		},
	}
	cmd.Flags().String("dsn", "", "postgres DSN (default built from PG_* env)")
	_ = v.BindPFlag("dsn", cmd.Flags().Lookup("dsn"))
	_ = v.BindEnv("dsn", "PG_DSN")
	return cmd
}
