package ui

import "fmt"

func PrintBanner(onlyBanner ...bool) {
	banner := `
     ██████╗ ██████╗  ██████╗ ██╗   ██╗███╗   ██╗██████╗
    ██╔════╝ ██╔══██╗██╔═══██╗██║   ██║████╗  ██║██╔══██╗
    ██║  ███╗██████╔╝██║   ██║██║   ██║██╔██╗ ██║██║  ██║
    ██║   ██║██╔══██╗██║   ██║██║   ██║██║╚██╗██║██║  ██║
    ╚██████╔╝██║  ██║╚██████╔╝╚██████╔╝██║ ╚████║██████╔╝
     ╚═════╝ ╚═╝  ╚═╝ ╚═════╝  ╚═════╝ ╚═╝  ╚═══╝╚═════╝
    `
	onlyBannerValue := false
	if len(onlyBanner) > 0 {
		onlyBannerValue = onlyBanner[0]
	}

	if !onlyBannerValue {
		usage := `
        Usage:
            provision --domain=<domain> [--config=<path>] [--host=<address>]

        Options:
            --domain        Domain or IP the installation is served on
            --config        Path to configuration file (default: ./provision.yaml)
            --host          Target host address (omit with --local)
            --local         Provision the local machine instead of SSH

        Examples:
            provision --domain=cloud.example.com --host=203.0.113.7
            provision --config=./provision.yaml --interactive

        Documentation: https://github.com/groundworkhq/provision
        `
		fmt.Printf("\033[1;36m%s\033[0m\n%s", banner, usage)
		return
	}

	fmt.Printf("\033[1;36m%s\033[0m\n", banner)
}
