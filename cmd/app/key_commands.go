package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/credguard/cmd/app/commands"
	"github.com/allisson/credguard/internal/app"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-master-key",
			Usage: "Generate a new master key for credential encryption",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Usage: "Wrap the key with KMS (base64key://, gcpkms://, awskms://, azurekeyvault://, hashivault://)",
				},
				formatFlag(),
			},
			Action: withContainer(func(ctx context.Context, cmd *cli.Command, c *app.Container) error {
				return commands.RunCreateMasterKey(
					ctx,
					c.KMSService(),
					c.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("kms-key-uri"),
					cmd.String("format"),
				)
			}),
		},
		{
			Name:  "key-info",
			Usage: "Show the source and fingerprint of the current master key",
			Flags: []cli.Flag{formatFlag()},
			Action: withContainer(func(ctx context.Context, cmd *cli.Command, c *app.Container) error {
				keyProvider, err := c.KeyProvider()
				if err != nil {
					return err
				}
				return commands.RunKeyInfo(ctx, keyProvider, commands.DefaultIO().Writer, cmd.String("format"))
			}),
		},
		{
			Name:  "validate-key",
			Usage: "Check that the current master key can encrypt and decrypt",
			Action: withContainer(func(ctx context.Context, _ *cli.Command, c *app.Container) error {
				keyProvider, err := c.KeyProvider()
				if err != nil {
					return err
				}
				return commands.RunValidateKey(ctx, keyProvider, c.Logger(), commands.DefaultIO().Writer)
			}),
		},
		{
			Name:  "rotate-master-key",
			Usage: "Replace the master key and re-encrypt every stored credential while no server is running",
			Flags: []cli.Flag{
				formatFlag(),
				&cli.BoolFlag{
					Name:  "offline",
					Usage: "Confirm that every server using this key store is stopped",
				},
			},
			Action: withContainer(func(ctx context.Context, cmd *cli.Command, c *app.Container) error {
				rotationUseCase, err := c.RotationUseCase()
				if err != nil {
					return err
				}
				return commands.RunRotateMasterKey(
					ctx,
					rotationUseCase,
					c.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("format"),
					cmd.Bool("offline"),
				)
			}),
		},
	}
}
