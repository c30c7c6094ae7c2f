package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"

	"github.com/rawbytedev/partinit"
	"github.com/rawbytedev/partinit/internal/wire"
	"github.com/rawbytedev/partinit/track"
)

const personMembers = 4

func newEncodeCmd(a *app) *cobra.Command {
	var (
		p        Person
		compress bool
	)
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a person record and print it as hex",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := encodePerson(p, compress)
			if err != nil {
				return err
			}
			a.logger.Debug("encoded", "bytes", len(data), "zstd", compress)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(data))
			return err
		},
	}
	cmd.Flags().StringVar(&p.Name, "name", "", "person name")
	cmd.Flags().Uint32Var(&p.Age, "age", 0, "person age")
	cmd.Flags().Uint64Var(&p.ID[0], "id0", 0, "first id word")
	cmd.Flags().Uint64Var(&p.ID[1], "id1", 0, "second id word")
	cmd.Flags().BoolVar(&compress, "zstd", false, "compress the record with zstd")
	return cmd
}

func newDecodeCmd(a *app) *cobra.Command {
	var compressed bool
	cmd := &cobra.Command{
		Use:   "decode <hex>",
		Short: "Decode a person record member by member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := hex.DecodeString(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("decode hex: %w", err)
			}
			p, err := decodePerson(a, data, compressed)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", p)
			return err
		},
	}
	cmd.Flags().BoolVar(&compressed, "zstd", false, "input is zstd compressed")
	return cmd
}

func encodePerson(p Person, compress bool) ([]byte, error) {
	w := wire.NewWriter(personMembers)
	w.PutString(p.Name)
	wire.PutFixed(w, p.Age)
	wire.PutFixed(w, p.ID[0])
	wire.PutFixed(w, p.ID[1])
	if !compress {
		return w.Bytes(), nil
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(w.Bytes(), nil), nil
}

// decodePerson writes each decoded member straight into its slot and only
// hands out the value once the tracker has seen every member.
func decodePerson(a *app, data []byte, compressed bool) (Person, error) {
	if compressed {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return Person{}, err
		}
		defer dec.Close()
		if data, err = dec.DecodeAll(data, nil); err != nil {
			return Person{}, fmt.Errorf("zstd: %w", err)
		}
	}

	r, err := wire.NewReader(data)
	if err != nil {
		return Person{}, err
	}
	if r.Count() != personMembers {
		return Person{}, fmt.Errorf("record has %d members, want %d", r.Count(), personMembers)
	}

	tr := track.New(partinit.Alloc[Person](), track.WithLogger(a.logger))

	name, err := r.ReadString()
	if err != nil {
		return Person{}, err
	}
	track.Write(tr, personName, name)

	age, err := wire.ReadFixed[uint32](r)
	if err != nil {
		return Person{}, err
	}
	track.Write(tr, personAge, age)

	for _, p := range []partinit.Path[Person, uint64]{personID0, personID1} {
		id, err := wire.ReadFixed[uint64](r)
		if err != nil {
			return Person{}, err
		}
		track.Write(tr, p, id)
	}

	if r.Remaining() != 0 {
		return Person{}, fmt.Errorf("%d trailing bytes", r.Remaining())
	}
	return tr.AssumeInit()
}
