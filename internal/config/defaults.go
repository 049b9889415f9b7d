package config

// Default returns the built-in n8n provisioning sequence used when no
// sequence file is supplied: wait for the instance to come up, run the
// credential-setup script, then run the workflow-creation script against the
// target URL. Scripts are expected next to the provisr executable.
func Default() *Config {
	return &Config{
		Version: "1.0",
		Name:    "n8n-provisioning",
		Settings: Settings{
			HostEnv: "IP",
			Port:    5678,
			Timeout: 300,
		},
		Steps: []Step{
			{
				ID:      "wait_for_n8n",
				Name:    "Wait for n8n to start",
				Type:    "wait",
				Enabled: true,
				Wait:    &WaitStep{Seconds: 15},
			},
			{
				ID:      "create_credentials",
				Name:    "Create credentials",
				Type:    "command",
				Enabled: true,
				Command: &CommandStep{Command: "./createCredentials.sh"},
			},
			{
				ID:      "create_workflows",
				Name:    "Create workflows",
				Type:    "command",
				Enabled: true,
				Command: &CommandStep{
					Command: "./createWorkflows.sh",
					Args:    []string{"--host={{target_url}}"},
				},
			},
		},
	}
}
