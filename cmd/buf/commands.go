package buf

import (
	"fmt"
	"strconv"

	"github.com/ValentinKolb/dMem/lib/codec"
	"github.com/spf13/cobra"
)

var (
	writeBase64 bool
	readBase64  bool

	allocCmd = &cobra.Command{
		Use:   "alloc [name] [size]",
		Short: "Allocates a zero-filled buffer of size bytes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("size must be a number: %w", err)
			}
			if err := rpcClient.Alloc(args[0], size); err != nil {
				return err
			}
			fmt.Println("alloc successfully")
			return nil
		},
	}
	writeCmd = &cobra.Command{
		Use:   "write [name] [offset] [data]",
		Short: "Writes data into a buffer at offset",
		Long:  "Writes data into a buffer at offset. The data is taken as raw text unless --base64 is set.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			offset, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("offset must be a number: %w", err)
			}

			data := []byte(args[2])
			if writeBase64 {
				if data, err = codec.Decode(args[2]); err != nil {
					return fmt.Errorf("data is not valid base64: %w", err)
				}
			}

			if err := rpcClient.Write(args[0], offset, data); err != nil {
				return err
			}
			fmt.Printf("wrote %d bytes\n", len(data))
			return nil
		},
	}
	readCmd = &cobra.Command{
		Use:   "read [name] [offset] [length]",
		Short: "Reads length bytes from a buffer starting at offset",
		Long:  "Reads length bytes from a buffer starting at offset. The bytes are printed as text unless --base64 is set.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			offset, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("offset must be a number: %w", err)
			}
			length, err := strconv.ParseUint(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("length must be a number: %w", err)
			}

			data, err := rpcClient.Read(args[0], offset, length)
			if err != nil {
				return err
			}
			if readBase64 {
				fmt.Println(codec.Encode(data))
			} else {
				fmt.Printf("%s\n", data)
			}
			return nil
		},
	}
	freeCmd = &cobra.Command{
		Use:   "free [name]",
		Short: "Releases a buffer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcClient.Free(args[0]); err != nil {
				return err
			}
			fmt.Println("free successfully")
			return nil
		},
	}
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "Lists all buffers (newest first)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := rpcClient.List()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("no buffers")
				return nil
			}
			for _, e := range entries {
				fmt.Printf("%-30s %d bytes\n", e.Name, e.Size)
			}
			return nil
		},
	}
)

func init() {
	writeCmd.Flags().BoolVar(&writeBase64, "base64", false, "Treat data as a base64 token")
	readCmd.Flags().BoolVar(&readBase64, "base64", false, "Print the data as a base64 token")
}
