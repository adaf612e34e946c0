package kv

import (
	"fmt"

	"github.com/ValentinKolb/tKV/lib/storage"
	"github.com/spf13/cobra"
)

var (
	hsetCmd = &cobra.Command{
		Use:   "hset [table] [key] [value]",
		Short: "Sets the value for a key in a table",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, key, value := args[0], args[1], args[2]
			prev, existed, err := rpcStorage.Set(table, key, storage.NewStringValue(value))
			if err != nil {
				return err
			}
			if existed {
				fmt.Printf("set successfully, previous value: %s\n", prev)
			} else {
				fmt.Println("set successfully")
			}
			return nil
		},
	}
	hgetCmd = &cobra.Command{
		Use:   "hget [table] [key]",
		Short: "Reads the value for a key in a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, key := args[0], args[1]
			value, found, err := rpcStorage.Get(table, key)
			if err != nil {
				return err
			}
			fmt.Printf("table=%s, key=%s, found=%t, value=%s\n", table, key, found, value)
			return nil
		},
	}
	hgetallCmd = &cobra.Command{
		Use:   "hgetall [table]",
		Short: "Reads all key-value pairs of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table := args[0]
			pairs, err := rpcStorage.GetAll(table)
			if err != nil {
				return err
			}
			fmt.Printf("table=%s, pairs=%d\n", table, len(pairs))
			for _, pair := range pairs {
				fmt.Printf("  %s=%s\n", pair.Key, pair.Value)
			}
			return nil
		},
	}
	hdelCmd = &cobra.Command{
		Use:   "hdel [table] [key]",
		Short: "Deletes a key from a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, key := args[0], args[1]
			prev, existed, err := rpcStorage.Del(table, key)
			if err != nil {
				return err
			}
			if existed {
				fmt.Printf("deleted successfully, removed value: %s\n", prev)
			} else {
				fmt.Println("nothing to delete")
			}
			return nil
		},
	}
	hexistCmd = &cobra.Command{
		Use:   "hexist [table] [key]",
		Short: "Checks if a key exists in a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, key := args[0], args[1]
			found, err := rpcStorage.Contains(table, key)
			if err != nil {
				return err
			}
			fmt.Printf("table=%s, key=%s, found=%t\n", table, key, found)
			return nil
		},
	}
)
