package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/creachadair/flatjson"
	"github.com/creachadair/flatjson/internal/logging"
)

// previewLen is the longest token text printed by the tokens command.
const previewLen = 40

func newTokensCommand() *cobra.Command {
	var (
		storeSize int
		grow      bool
	)

	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "Print the token table of a JSON document",
		Long: `Tokenize a JSON document and print one line for each token: its index,
kind, byte span, number of children, parent index and text. The document is
read from the named file, or from standard input if no file or "-" is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if storeSize < 0 {
				return fmt.Errorf("invalid store size %d", storeSize)
			}
			data, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			p := flatjson.NewParser(make([]flatjson.Token, storeSize))
			for {
				if _, st := p.Parse(data); st != flatjson.NotEnoughTokens || !grow {
					break
				}
				if err := p.Grow(make([]flatjson.Token, max(2*p.Cap(), 16))); err != nil {
					return err
				}
			}

			logging.FromContext(cmd.Context()).Debug("tokenized input",
				logging.FieldBytes, len(data), logging.FieldTokens, p.Len(), logging.FieldStatus, p.Status())

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "INDEX\tKIND\tSPAN\tSIZE\tPARENT\tTEXT")
			for i, tok := range p.Tokens() {
				fmt.Fprintf(tw, "%d\t%v\t%d-%d\t%d\t%d\t%s\n",
					i, tok.Kind, tok.Start, tok.End, tok.Size, tok.Parent, preview(data, tok))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			switch st := p.Status(); st {
			case flatjson.Success:
				return nil
			case flatjson.Initialized:
				return fmt.Errorf("at %v: incomplete input, %d unclosed containers",
					flatjson.Locate(data, p.Offset()), p.Depth())
			default:
				return fmt.Errorf("at %v: %w", flatjson.Locate(data, p.Offset()), p.Err())
			}
		},
	}

	cmd.Flags().IntVarP(&storeSize, "store", "n", 1024, "capacity of the token store")
	cmd.Flags().BoolVar(&grow, "grow", true, "grow the token store as needed")
	return cmd
}

func readInput(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(args[0])
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("input file %q not found", args[0])
	}
	return data, err
}

// preview returns a printable rendition of the text of tok.
func preview(data []byte, tok flatjson.Token) string {
	switch tok.Kind {
	case flatjson.Object, flatjson.Array:
		return ""
	case flatjson.String:
		text := tok.Text(data)
		if len(text) > previewLen {
			return flatjson.Quote(text[:previewLen]) + "..."
		}
		return flatjson.Quote(text)
	default:
		text := string(tok.Text(data))
		if len(text) > previewLen {
			return text[:previewLen] + "..."
		}
		return text
	}
}
