package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/groundworkhq/provision/internal/types"
	"github.com/manifoldco/promptui"
)

// InteractiveSetup fills in the config values the operator did not provide
// via file or flags.
func InteractiveSetup(config *types.Config) error {
	if config.Domain == "" {
		domainPrompt := promptui.Prompt{
			Label: "Domain or IP the installation will be served on",
			Validate: func(input string) error {
				if strings.TrimSpace(input) == "" {
					return errors.New("domain must not be empty")
				}
				return nil
			},
		}
		domain, err := domainPrompt.Run()
		if err != nil {
			return fmt.Errorf("domain prompt failed: %v", err)
		}
		config.Domain = strings.TrimSpace(domain)
	}

	if !config.Host.Local && config.Host.Address == "" {
		hostPrompt := promptui.Prompt{
			Label: "Target host address (SSH)",
			Validate: func(input string) error {
				if strings.TrimSpace(input) == "" {
					return errors.New("host address must not be empty")
				}
				return nil
			},
		}
		address, err := hostPrompt.Run()
		if err != nil {
			return fmt.Errorf("host prompt failed: %v", err)
		}
		config.Host.Address = strings.TrimSpace(address)
	}

	if config.Admin.Password == "" {
		mode, err := selectCredentialMode("Administrator password")
		if err != nil {
			return err
		}
		if mode == credentialGenerate {
			config.Admin.Password = types.GeneratePlaceholder
		} else {
			passwordPrompt := promptui.Prompt{
				Label: "Administrator password",
				Mask:  '*',
				Validate: func(input string) error {
					if len(input) < 8 {
						return errors.New("password must be at least 8 characters")
					}
					return nil
				},
			}
			password, err := passwordPrompt.Run()
			if err != nil {
				return fmt.Errorf("password prompt failed: %v", err)
			}
			config.Admin.Password = password
		}
	}

	return nil
}

const (
	credentialGenerate = "Generate a secure random value"
	credentialManual   = "Enter a value manually"
)

func selectCredentialMode(label string) (string, error) {
	modePrompt := promptui.Select{
		Label: label,
		Items: []string{credentialGenerate, credentialManual},
		Templates: &promptui.SelectTemplates{
			Active:   "➤ {{ . }}",
			Inactive: "  {{ . }}",
			Selected: "✔ {{ . }}",
		},
	}
	_, mode, err := modePrompt.Run()
	if err != nil {
		return "", fmt.Errorf("credential prompt failed: %v", err)
	}
	return mode, nil
}

// ConfirmProvisioning asks before the pipeline mutates the host.
func ConfirmProvisioning(target, domain string) (bool, error) {
	confirm := promptui.Prompt{
		Label:     fmt.Sprintf("Provision %s for %s", target, domain),
		IsConfirm: true,
	}
	if _, err := confirm.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
