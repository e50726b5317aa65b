package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configKeys lists the settable keys and whether each holds a list.
var configKeys = map[string]bool{
	keyExcludeInfo:    true,
	keyExcludeFormat:  true,
	keyGLPLInInfo:     false,
	keyWriterExclInfo: true,
	keyWriterExclFmt:  true,
	keyRoundQual:      false,
	keyWorkers:        false,
	keySkipInvalid:    false,
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage vibe-vcf configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.vibe-vcf.yaml.",
		Example: `  vibe-vcf config                                  # show all config
  vibe-vcf config set reader.exclude_info CSQ,ANN  # drop INFO fields on decode
  vibe-vcf config set writer.round_qual true       # round QUAL on output
  vibe-vcf config get workers                      # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigKeysCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd.OutOrStdout(), args[0])
		},
	}
}

func newConfigKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List the supported configuration keys",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			keys := make([]string, 0, len(configKeys))
			for k := range configKeys {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
		},
	}
}

func runConfigShow(out io.Writer) error {
	settings := viper.AllSettings()
	if len(settings) == 0 {
		fmt.Fprintln(out, "# No configuration set. Config file: ~/.vibe-vcf.yaml")
		return nil
	}

	b, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_, err = out.Write(b)
	return err
}

// configValue converts a command-line value to the type stored for key.
func configValue(key, value string) (any, error) {
	isList, ok := configKeys[key]
	if !ok {
		return nil, usageErrorf("unknown config key %q (see 'vibe-vcf config keys')", key)
	}
	if isList {
		var ids []string
		for _, id := range strings.Split(value, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		return ids, nil
	}

	switch value {
	case "true", "yes", "on":
		return true, nil
	case "false", "no", "off":
		return false, nil
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n, nil
	}
	return value, nil
}

func runConfigSet(out io.Writer, key, value string) error {
	v, err := configValue(key, value)
	if err != nil {
		return err
	}
	viper.Set(key, v)

	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		if cfgFile, err = defaultConfigPath(); err != nil {
			return err
		}
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(out, "Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func runConfigGet(out io.Writer, key string) error {
	if _, ok := configKeys[key]; !ok {
		return usageErrorf("unknown config key %q (see 'vibe-vcf config keys')", key)
	}
	if !viper.IsSet(key) {
		return fmt.Errorf("key %q is not set", key)
	}
	if configKeys[key] {
		fmt.Fprintln(out, strings.Join(configList(key), ","))
		return nil
	}
	fmt.Fprintln(out, viper.Get(key))
	return nil
}
