// Command tabledump inspects container files written by the binary sink.
//
//	tabledump ls FILE              list datasets
//	tabledump schema FILE DATASET  print a dataset's compound type as JSON
//	tabledump csv FILE DATASET     decode rows to CSV
package main

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vsamtuc/tables/container"
	"github.com/vsamtuc/tables/endian"
	"github.com/vsamtuc/tables/format"
)

var verbose bool

func main() {
	root := &cobra.Command{
		Use:           "tabledump",
		Short:         "Inspect table container files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(lsCmd(), schemaCmd(), csvCmd())

	if err := root.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func withFile(path string, fn func(*container.File) error) error {
	f, err := container.OpenOrCreate(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return fn(f)
}

func lsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls FILE",
		Short: "List the datasets of a container file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFile(args[0], func(f *container.File) error {
				names := f.Datasets()
				sort.Strings(names)
				for _, name := range names {
					ds, err := f.Root().OpenDataset(name)
					if err != nil {
						return err
					}
					fmt.Printf("%s\t%d rows\t%d bytes/record\t%d fields\n",
						name, ds.Rows(), ds.Type().Size, len(ds.Type().Fields))
					if err := ds.Close(); err != nil {
						return err
					}
				}

				return nil
			})
		},
	}
}

// datasetSchema is the JSON shape of `tabledump schema`.
type datasetSchema struct {
	Name    string        `json:"name"`
	Rows    uint64        `json:"rows"`
	Size    uint32        `json:"record_size"`
	Align   uint32        `json:"record_align"`
	Columns []fieldSchema `json:"columns"`
}

type fieldSchema struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Size       uint32 `json:"size"`
	Offset     uint32 `json:"offset"`
	Arithmetic bool   `json:"arithmetic"`
}

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema FILE DATASET",
		Short: "Print a dataset's compound type as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFile(args[0], func(f *container.File) error {
				ds, err := f.Root().OpenDataset(args[1])
				if err != nil {
					return err
				}
				defer ds.Close()

				ctype := ds.Type()
				doc := datasetSchema{
					Name:  ds.Name(),
					Rows:  ds.Rows(),
					Size:  ctype.Size,
					Align: ctype.Align,
				}
				for _, fld := range ctype.Fields {
					doc.Columns = append(doc.Columns, fieldSchema{
						Name:       fld.Name,
						Type:       fld.Kind.String(),
						Size:       fld.Size,
						Offset:     fld.Offset,
						Arithmetic: fld.Kind.IsArithmetic(),
					})
				}

				data, err := json.MarshalIndent(doc, "", "\t")
				if err != nil {
					return err
				}
				fmt.Println(string(data))

				return nil
			})
		},
	}
}

func csvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "csv FILE DATASET",
		Short: "Decode a dataset's rows to CSV",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFile(args[0], func(f *container.File) error {
				ds, err := f.Root().OpenDataset(args[1])
				if err != nil {
					return err
				}
				defer ds.Close()

				ctype := ds.Type()
				names := make([]string, len(ctype.Fields))
				for i, fld := range ctype.Fields {
					names[i] = fld.Name
				}
				fmt.Println(strings.Join(names, ","))

				rec := make([]byte, ctype.Size)
				cells := make([]string, len(ctype.Fields))
				for i := uint64(0); i < ds.Rows(); i++ {
					if err := ds.ReadRow(i, rec); err != nil {
						return err
					}
					for j, fld := range ctype.Fields {
						cells[j] = renderField(rec, fld)
					}
					fmt.Println(strings.Join(cells, ","))
				}

				return nil
			})
		},
	}
}

// renderField formats one field of a raw record with a default per-kind
// format.
func renderField(rec []byte, fld container.Field) string {
	engine := endian.GetLittleEndianEngine()
	raw := rec[fld.Offset : fld.Offset+fld.Size]

	switch fld.Kind {
	case format.KindBool:
		return fmt.Sprintf("%v", raw[0] != 0)
	case format.KindInt8:
		return fmt.Sprintf("%d", int8(raw[0]))
	case format.KindInt16:
		return fmt.Sprintf("%d", int16(engine.Uint16(raw)))
	case format.KindInt32:
		return fmt.Sprintf("%d", int32(engine.Uint32(raw)))
	case format.KindInt64:
		return fmt.Sprintf("%d", int64(engine.Uint64(raw)))
	case format.KindUint8:
		return fmt.Sprintf("%d", raw[0])
	case format.KindUint16:
		return fmt.Sprintf("%d", engine.Uint16(raw))
	case format.KindUint32:
		return fmt.Sprintf("%d", engine.Uint32(raw))
	case format.KindUint64:
		return fmt.Sprintf("%d", engine.Uint64(raw))
	case format.KindFloat32:
		return fmt.Sprintf("%g", math.Float32frombits(engine.Uint32(raw)))
	case format.KindFloat64:
		return fmt.Sprintf("%g", math.Float64frombits(engine.Uint64(raw)))
	case format.KindString:
		s := raw
		if i := bytes.IndexByte(s, 0); i >= 0 {
			s = s[:i]
		}
		return string(s)
	default:
		return fmt.Sprintf("%x", raw)
	}
}
