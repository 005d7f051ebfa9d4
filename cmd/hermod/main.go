// Hermod is a small tool to run payloads through the codec layer: it encodes
// a JSON document from stdin into the wire format of a codec chain, or
// decodes wire bytes back into JSON.
//
// Additional codec aliases can be declared in a YAML file mapping an alias to
// a codec chain, for example:
//
//	packed: json|gzip
//	text: json|binary
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	urfave "github.com/urfave/cli/v2"
	"go.hermod.dev/hermod/serde/codec"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

func main() {
	err := run(os.Args)
	if err != nil {
		fmt.Printf("%+v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	return makeApp(os.Stdin, os.Stdout).Run(args)
}

func makeApp(in io.Reader, out io.Writer) *urfave.App {
	codecFlag := &urfave.StringFlag{
		Name:  "codec",
		Usage: "identifier of the codec chain",
		Value: "json",
	}

	return &urfave.App{
		Name:  "hermod",
		Usage: "encode and decode pipeline payloads",
		Flags: []urfave.Flag{
			&urfave.StringFlag{
				Name:  "aliases",
				Usage: "path to a YAML file of codec aliases",
			},
		},
		Before: func(ctx *urfave.Context) error {
			return loadAliases(ctx.String("aliases"))
		},
		Commands: []*urfave.Command{
			{
				Name:  "encode",
				Usage: "encode a JSON document from stdin",
				Flags: []urfave.Flag{codecFlag},
				Action: func(ctx *urfave.Context) error {
					return encode(ctx.String("codec"), in, out)
				},
			},
			{
				Name:  "decode",
				Usage: "decode wire bytes from stdin into JSON",
				Flags: []urfave.Flag{codecFlag},
				Action: func(ctx *urfave.Context) error {
					return decode(ctx.String("codec"), in, out)
				},
			},
		},
	}
}

// loadAliases registers the codec chains declared in the YAML file under
// their alias.
func loadAliases(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return xerrors.Errorf("failed to read aliases: %v", err)
	}

	aliases := map[string]string{}

	err = yaml.Unmarshal(data, &aliases)
	if err != nil {
		return xerrors.Errorf("failed to parse aliases: %v", err)
	}

	for alias, id := range aliases {
		c, err := codec.Default().Resolve(codec.ID(id))
		if err != nil {
			return xerrors.Errorf("failed to resolve alias '%s': %v", alias, err)
		}

		codec.Register(codec.ID(alias), c)
	}

	return nil
}

func encode(id string, in io.Reader, out io.Writer) error {
	input, err := io.ReadAll(in)
	if err != nil {
		return xerrors.Errorf("failed to read input: %v", err)
	}

	var value interface{}

	err = json.Unmarshal(input, &value)
	if err != nil {
		return xerrors.Errorf("failed to parse input: %v", err)
	}

	data, err := codec.Dumps(codec.ID(id), value)
	if err != nil {
		return xerrors.Errorf("failed to encode: %v", err)
	}

	_, err = out.Write(data)
	if err != nil {
		return xerrors.Errorf("failed to write output: %v", err)
	}

	return nil
}

func decode(id string, in io.Reader, out io.Writer) error {
	input, err := io.ReadAll(in)
	if err != nil {
		return xerrors.Errorf("failed to read input: %v", err)
	}

	value, err := codec.Loads(codec.ID(id), input)
	if err != nil {
		return xerrors.Errorf("failed to decode: %v", err)
	}

	if data, ok := value.([]byte); ok {
		_, err = out.Write(data)
		if err != nil {
			return xerrors.Errorf("failed to write output: %v", err)
		}

		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return xerrors.Errorf("failed to render output: %v", err)
	}

	fmt.Fprintln(out, string(data))

	return nil
}
