package main

import (
	"github.com/spf13/cobra"
)

var licenseCmd = &cobra.Command{
	Use:   "license",
	Short: "Activate and manage the license for this installation",
}

var licenseActivateCmd = &cobra.Command{
	Use:   "activate KEY",
	Short: "Activate a license key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		instance, _ := cmd.Flags().GetString("instance")
		return runOp(cmd, "activateLicenseKey", map[string]string{"key": args[0], "instanceName": instance})
	},
}

var licenseValidateCmd = &cobra.Command{
	Use:   "validate [KEY INSTANCE_ID]",
	Short: "Check the stored (or given) license",
	Args:  cobra.MatchAll(cobra.MaximumNArgs(2), licensePair),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, "validateLicenseKey", licenseArgs(args))
	},
}

var licenseDeactivateCmd = &cobra.Command{
	Use:   "deactivate [KEY INSTANCE_ID]",
	Short: "Release the stored (or given) license",
	Args:  cobra.MatchAll(cobra.MaximumNArgs(2), licensePair),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, "deactivateLicenseKey", licenseArgs(args))
	},
}

var licenseCheckoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Create a checkout session and print its URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, "generateCheckoutSession", struct{}{})
	},
}

func licensePair(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		return cobra.ExactArgs(2)(cmd, args)
	}
	return nil
}

func licenseArgs(args []string) map[string]string {
	if len(args) != 2 {
		return map[string]string{}
	}
	return map[string]string{"licenseKey": args[0], "instanceId": args[1]}
}

func init() {
	licenseActivateCmd.Flags().String("instance", "", "Instance name (default from config)")
	licenseCmd.AddCommand(licenseActivateCmd, licenseValidateCmd, licenseDeactivateCmd, licenseCheckoutCmd)
}
