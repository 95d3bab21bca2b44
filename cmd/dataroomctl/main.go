// Command dataroomctl browses data rooms and share links from a terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"dataroom/internal/client"
	"dataroom/internal/domain"
	models "dataroom/internal/domain/models/dataroom"
	"dataroom/internal/mirror"

	"github.com/joho/godotenv"
)

const usage = `usage: dataroomctl [flags] <command>

commands:
  tree                  print the whole data room
  ls <path>             list a folder, e.g. ls /Legal/Contracts
  shared <token> [path] browse a share link

flags:
`

func main() {
	_ = godotenv.Load()

	baseURL := flag.String("url", envOr("DATAROOM_URL", "http://localhost:8080"), "API base URL")
	token := flag.String("token", os.Getenv("DATAROOM_TOKEN"), "Bearer token for owner commands")
	roomID := flag.String("room", "", "Data room id (default: your default room)")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	api := client.New(*baseURL, *token)
	var err error
	switch args[0] {
	case "tree":
		err = runTree(ctx, os.Stdout, api, *roomID)
	case "ls":
		path := ""
		if len(args) > 1 {
			path = args[1]
		}
		err = runList(ctx, os.Stdout, api, *roomID, path)
	case "shared":
		if len(args) < 2 {
			flag.Usage()
			os.Exit(2)
		}
		path := ""
		if len(args) > 2 {
			path = args[2]
		}
		err = runShared(ctx, os.Stdout, api, args[1], path)
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			log.Fatalf("%v (set DATAROOM_TOKEN or --token)", err)
		}
		log.Fatal(err)
	}
}

func loadOwnerArena(ctx context.Context, api *client.Client, roomID string) (*mirror.Arena, error) {
	var (
		room *models.DataroomWithNodes
		err  error
	)
	if roomID == "" {
		room, err = api.DefaultDataroom(ctx)
	} else {
		room, err = api.GetDataroom(ctx, roomID)
	}
	if err != nil {
		return nil, err
	}
	return mirror.Load(room.Nodes, room.OwnerEmail), nil
}

func runTree(ctx context.Context, w io.Writer, api *client.Client, roomID string) error {
	arena, err := loadOwnerArena(ctx, api, roomID)
	if err != nil {
		return err
	}
	printTree(w, arena, arena.RootID(), 0)
	return nil
}

func runList(ctx context.Context, w io.Writer, api *client.Client, roomID, path string) error {
	arena, err := loadOwnerArena(ctx, api, roomID)
	if err != nil {
		return err
	}
	folder, ok := arena.FolderByPath(path)
	if !ok {
		return fmt.Errorf("%s: %w", path, domain.ErrNotFound)
	}
	printFolder(w, arena, folder.ID)
	return nil
}

func runShared(ctx context.Context, w io.Writer, api *client.Client, token, path string) error {
	view, err := api.Shared(ctx, token, path)
	if err != nil {
		return err
	}
	arena := mirror.LoadShared(view.Dataroom.Nodes, view.SharedFolderID, view.Dataroom.Name)

	current := arena.RootID()
	if view.CurrentFolderID != nil {
		current = *view.CurrentFolderID
	}
	if view.Dataroom.Owner.Email != "" {
		fmt.Fprintf(w, "shared by %s\n", view.Dataroom.Owner.Email)
	}
	printFolder(w, arena, current)
	return nil
}

// printFolder writes the breadcrumb trail of id followed by its children
func printFolder(w io.Writer, arena *mirror.Arena, id string) {
	crumbs := arena.Breadcrumbs(id)
	names := make([]string, 0, len(crumbs))
	for _, c := range crumbs {
		names = append(names, c.Name)
	}
	fmt.Fprintln(w, strings.Join(names, " / "))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, n := range arena.ChildrenOf(id) {
		if n.IsFolder() {
			fmt.Fprintf(tw, "%s/\t\t%s\n", n.Name, n.UpdatedAt.Format(time.DateOnly))
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", n.Name, humanSize(n.Size), n.UpdatedAt.Format(time.DateOnly))
	}
	tw.Flush()
}

func printTree(w io.Writer, arena *mirror.Arena, id string, depth int) {
	node, _ := arena.Get(id)
	name := node.Name
	if id == arena.RootID() {
		name = arena.Breadcrumbs(id)[0].Name
	}
	if node.IsFile() {
		fmt.Fprintf(w, "%s%s (%s)\n", strings.Repeat("  ", depth), name, humanSize(node.Size))
		return
	}
	fmt.Fprintf(w, "%s%s/\n", strings.Repeat("  ", depth), name)
	for _, childID := range arena.Children(id) {
		printTree(w, arena, childID, depth+1)
	}
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
