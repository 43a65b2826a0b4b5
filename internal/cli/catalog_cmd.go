// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

// catalog_cmd.go - Accommodation catalog command handlers.
//
// Commands:
//   wayra catalog list            List accommodations
//   wayra catalog search <text>   Search by name or region
//   wayra catalog show <id>       Show one accommodation
package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/wayralabs/wayra-tui/internal/catalog"
)

// HandleCatalog dispatches the "catalog" subcommands.
func HandleCatalog(args Args) {
	if err := handleCatalogCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

func handleCatalogCommand(args Args) error {
	cat, err := catalog.Open()
	if err != nil {
		return WrapError(err, "failed to open catalog")
	}
	defer cat.Close()

	switch args.Subcommand {
	case "", "list":
		listings, err := cat.All()
		if err != nil {
			return NewCommandError("catalog", "list", "query failed", err)
		}
		printListings(listings, args)
		return nil

	case "search":
		query := strings.Join(args.Raw[1:], " ")
		if strings.TrimSpace(query) == "" {
			return ErrMissingArgument("search text", "wayra catalog search Salta")
		}
		listings, err := cat.Search(query)
		if err != nil {
			return NewCommandError("catalog", "search", "query failed", err)
		}
		printListings(listings, args)
		return nil

	case "show":
		if len(args.Raw) < 2 {
			return ErrMissingArgument("id", "wayra catalog show 1")
		}
		listing, err := resolveListing(cat, args.Raw[1])
		if err != nil {
			return err
		}
		if args.JSON {
			NewJSONResponse("catalog", listing).Print()
			return nil
		}
		fmt.Println(headerStyle.Render(listing.Name))
		fmt.Printf("  ID:     %d\n", listing.ID)
		fmt.Printf("  Región: %s\n", listing.Region)
		fmt.Printf("  Tipo:   %s\n", listing.Kind)
		return nil

	default:
		return &ValidationError{
			Field:   "subcommand",
			Value:   args.Subcommand,
			Reason:  "unknown catalog subcommand",
			Example: "wayra catalog [list|search|show]",
		}
	}
}

// resolveListing parses a raw id and looks it up in the catalog.
func resolveListing(cat *catalog.Catalog, raw string) (catalog.Listing, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return catalog.Listing{}, &ValidationError{
			Field:  "id",
			Value:  raw,
			Reason: "must be a numeric listing id",
		}
	}
	listing, err := cat.Get(id)
	if err != nil {
		return catalog.Listing{}, ErrNotFound("listing", raw)
	}
	return listing, nil
}

func printListings(listings []catalog.Listing, args Args) {
	if args.JSON {
		NewJSONResponse("catalog", listings).Print()
		return
	}
	if len(listings) == 0 {
		fmt.Println(infoStyle.Render("Sin resultados."))
		return
	}

	region := ""
	for _, l := range listings {
		if l.Region != region {
			region = l.Region
			fmt.Println(headerStyle.Render(region))
		}
		fmt.Printf("  %s %-40s %s\n",
			refStyle.Render(fmt.Sprintf("[%d]", l.ID)),
			l.Name,
			infoStyle.Render(l.Kind))
	}
}
