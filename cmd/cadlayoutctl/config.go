package main

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"cadlayout/internal/schema"
)

const (
	envPrefix      = "CADLAYOUT"
	configBaseName = "cadlayout"
)

// loadConfiguration reads the optional config file and CADLAYOUT_* variables,
// then applies them to every flag of cmd the user did not set.
func (a *app) loadConfiguration(cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if a.configFile != "" {
		v.SetConfigFile(a.configFile)
		if err := v.ReadInConfig(); err != nil {
			return err
		}
	} else {
		v.SetConfigName(configBaseName)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return err
			}
		}
	}
	a.configUsed = v.ConfigFileUsed()
	return bindFlags(v, cmd)
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed || !v.IsSet(f.Name) || bindErr != nil {
			return
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			bindErr = sv.Replace(v.GetStringSlice(f.Name))
			return
		}
		bindErr = f.Value.Set(v.GetString(f.Name))
	})
	return bindErr
}

func loadSchema(path string) (*schema.Schema, error) {
	if path == "" {
		return nil, errors.New("--schema is required")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return schema.DecodeDocument(file)
}
