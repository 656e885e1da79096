package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ember/internal/defs"
	"ember/internal/driver"
	"ember/internal/types"
)

var demoOut string

func init() {
	demoCmd.Flags().StringVar(&demoOut, "out", "demo.mp", "where to write the snapshot")
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Write a small example snapshot to resolve",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := demoSnapshot()
		if err := driver.SaveSnapshot(demoOut, snap); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s; try: ember resolve %s\n", demoOut, demoOut)
		return nil
	},
}

// demoSnapshot builds a program with a generic function instantiated twice, a
// type owning a destructor, and a destructor-free primitive, showing both
// real and empty drop glue.
func demoSnapshot() *driver.Snapshot {
	const (
		tyInt = int32(iota) // record positions
		tyBool
		tyVec
	)
	const (
		defDrop = uint32(iota) + 1 // final definition ids
		defSwap
		defVecDrop
	)
	typeParam := []driver.ParamRecord{{Name: "T", Kind: uint8(defs.ParamType)}}
	return &driver.Snapshot{
		Schema: 1,
		Types: []driver.TypeRecord{
			{Kind: uint8(types.KindInt), Elem: driver.NoRef, Result: driver.NoRef, Upvars: driver.NoRef},
			{Kind: uint8(types.KindBool), Elem: driver.NoRef, Result: driver.NoRef, Upvars: driver.NoRef},
			{
				Kind:   uint8(types.KindAdt),
				Name:   "Vec",
				Dtor:   defVecDrop,
				List:   []int32{tyInt},
				Elem:   driver.NoRef,
				Result: driver.NoRef,
				Upvars: driver.NoRef,
			},
		},
		Defs: []driver.DefRecord{
			{Kind: uint8(defs.KindFn), Name: "drop_in_place", Params: typeParam, Type: driver.NoRef},
			{Kind: uint8(defs.KindFn), Name: "swap", Params: typeParam, Type: driver.NoRef},
			{
				Kind:  uint8(defs.KindFn),
				Name:  "Vec::drop",
				Flags: uint16(defs.FlagCrossUnitInline),
				Type:  driver.NoRef,
			},
		},
		Lang: driver.LangRecord{DropInPlace: defDrop},
		Requests: []driver.RequestRecord{
			{Def: defSwap, Args: []int32{tyInt}, Label: "swap<int>"},
			{Def: defSwap, Args: []int32{tyBool}, Label: "swap<bool>"},
			{Def: defDrop, Args: []int32{tyVec}, Label: "drop Vec"},
			{Def: defDrop, Args: []int32{tyInt}, Label: "drop int"},
		},
	}
}
