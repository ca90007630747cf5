package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/edgequery/edgequery/pkg/beeline"
	"github.com/edgequery/edgequery/pkg/query"
	"github.com/edgequery/edgequery/pkg/sshutils"
	"github.com/edgequery/edgequery/pkg/table"
)

// DefaultPort is used when neither config nor EDGEQUERY_PORT set one.
const DefaultPort = 3000

func configEnvReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}

func setConfigDefaults() {
	viper.SetDefault("port", DefaultPort)
	viper.SetDefault("ssh.port", sshutils.SSHDefaultPort)
	viper.SetDefault("beeline.output_format", string(beeline.FormatCSV2))
	viper.SetDefault("query.ragged_policy", "error")
}

// buildSSHConfig assembles the edge node connection settings from viper.
func buildSSHConfig() (*sshutils.SSHConfig, error) {
	host := viper.GetString("ssh.host")
	if host == "" {
		return nil, fmt.Errorf("ssh.host is required")
	}

	config := sshutils.NewSSHConfig(
		host,
		viper.GetInt("ssh.port"),
		viper.GetString("ssh.user"),
	)
	config.Password = viper.GetString("ssh.password")
	config.PrivateKeyPath = viper.GetString("ssh.key_path")
	config.PrivateKeyPass = viper.GetString("ssh.key_passphrase")

	if timeout := viper.GetDuration("ssh.timeout"); timeout > 0 {
		config.Timeout = timeout
	}

	// Host key checking is strict unless the operator explicitly opts out.
	if viper.GetBool("ssh.insecure_host_key") {
		config.HostKeyPolicy = sshutils.InsecureAcceptAllPolicy()
	} else {
		config.HostKeyPolicy = sshutils.KnownHostsPolicy(viper.GetString("ssh.known_hosts"))
	}

	return config, nil
}

// buildService assembles the query pipeline from viper.
func buildService() (*query.Service, error) {
	sshConfig, err := buildSSHConfig()
	if err != nil {
		return nil, err
	}

	command, err := beeline.NewCommand(
		viper.GetString("beeline.endpoint"),
		beeline.Format(viper.GetString("beeline.output_format")),
	)
	if err != nil {
		return nil, err
	}
	if binary := viper.GetString("beeline.path"); binary != "" {
		command.Binary = binary
	}
	command.DSVDelimiter = viper.GetString("beeline.dsv_delimiter")

	ragged, err := table.ParseRaggedPolicy(viper.GetString("query.ragged_policy"))
	if err != nil {
		return nil, err
	}

	return query.NewService(sshConfig, query.Config{
		Command:         command,
		DefaultSQL:      viper.GetString("query.default"),
		BookPath:        viper.GetString("query.file"),
		Ragged:          ragged,
		RemoteScriptDir: viper.GetString("query.remote_script_dir"),
	})
}

func serverListenAddr() string {
	return fmt.Sprintf(":%d", viper.GetInt("port"))
}

func requestTimeout() time.Duration {
	if t := viper.GetDuration("query.timeout"); t > 0 {
		return t
	}
	return 0
}
