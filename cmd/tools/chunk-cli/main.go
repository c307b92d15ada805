package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/annel0/voxel-chunk/internal/storage"
	"github.com/annel0/voxel-chunk/internal/world/chunk"
)

const defaultDBPath = "data/chunks"

func main() {
	var (
		dbPath  = flag.String("db", defaultDBPath, "Path to chunk storage (BadgerDB)")
		command = flag.String("cmd", "info", "Command: info, heightmap, network-size")
		x       = flag.Int("x", 0, "Chunk X coordinate")
		z       = flag.Int("z", 0, "Chunk Z coordinate")
	)
	flag.Parse()

	store, err := storage.NewChunkStorage(*dbPath, false)
	if err != nil {
		log.Fatalf("❌ Failed to open storage: %v", err)
	}
	defer store.Close()

	c, err := store.LoadChunk(int32(*x), int32(*z))
	if err != nil {
		log.Fatalf("❌ Failed to load chunk %d,%d: %v", *x, *z, err)
	}

	if err := run(os.Stdout, *command, c); err != nil {
		fmt.Printf("❌ %v\n", err)
		fmt.Println("Available commands: info, heightmap, network-size")
		os.Exit(1)
	}
}

func run(w io.Writer, command string, c *chunk.Chunk) error {
	switch command {
	case "info":
		printInfo(w, c)
	case "heightmap":
		printHeightMap(w, c)
	case "network-size":
		payload, err := c.NetworkSerialize()
		if err != nil {
			return fmt.Errorf("network serialize failed: %w", err)
		}
		fmt.Fprintf(w, "📦 Network payload: %d bytes (%d subchunks)\n", len(payload), c.SubChunkSendCount())
		fmt.Fprintf(w, "📦 Fast payload:    %d bytes\n", len(c.FastSerialize()))
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
	return nil
}

// printInfo выводит флаги колонки и занятость подчанков
func printInfo(w io.Writer, c *chunk.Chunk) {
	fmt.Fprintf(w, "🧱 Chunk %d,%d\n", c.X(), c.Z())
	fmt.Fprintf(w, "   generated=%v populated=%v lightPopulated=%v\n",
		c.IsGenerated(), c.IsPopulated(), c.IsLightPopulated())
	fmt.Fprintf(w, "   highest subchunk: %d, extra data entries: %d\n",
		c.HighestSubChunkIndex(), len(c.BlockExtraDataArray()))

	var row strings.Builder
	for i, sub := range c.SubChunks() {
		switch {
		case chunk.IsEmptyVariant(sub):
			row.WriteByte('.')
		case sub.IsEmpty():
			row.WriteByte('o') // выделен, но пуст
		default:
			row.WriteByte('#')
		}
		if i == 7 {
			row.WriteByte(' ')
		}
	}
	fmt.Fprintf(w, "   subchunks 0..15: %s\n", row.String())
}

// printHeightMap выводит карту высот сеткой 16x16 (строки - z)
func printHeightMap(w io.Writer, c *chunk.Chunk) {
	for z := 0; z < 16; z++ {
		for x := 0; x < 16; x++ {
			fmt.Fprintf(w, "%4d", c.HeightMap(x, z))
		}
		fmt.Fprintln(w)
	}
}
