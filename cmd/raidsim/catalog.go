package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Show the loaded game data",
	Long: `Print the items, drone and enemy templates and room templates of the
catalog in use, with its digest. Use --catalog to inspect a custom data
directory before running with it.`,
	Args: cobra.NoArgs,
	Run:  runCatalog,
}

func runCatalog(cmd *cobra.Command, args []string) {
	cat, err := loadCatalog()
	if err != nil {
		fail("loading catalog: %v", err)
	}

	fmt.Printf("Catalog %s\n\n", cat.Digest)

	fmt.Println("Items:")
	fmt.Printf("  %-16s  %-10s  %-4s  %-6s  %-5s  %s\n", "ID", "Kind", "Size", "Damage", "Range", "Ammo/Charges")
	fmt.Printf("  %-16s  %-10s  %-4s  %-6s  %-5s  %s\n", "--", "----", "----", "------", "-----", "------------")
	for _, it := range cat.Items() {
		uses := it.MaxAmmo
		if it.Charges > 0 {
			uses = it.Charges
		}
		fmt.Printf("  %-16s  %-10s  %-4d  %-6d  %-5d  %d\n", it.ID, it.Kind, it.Size, it.Damage, it.Range, uses)
	}

	fmt.Println()
	fmt.Println("Drones:")
	for _, d := range cat.Drones() {
		fmt.Printf("  %-10s  %-12s  hp %-3d armor %d\n", d.ID, d.Name, d.HP, d.Armor)
	}

	fmt.Println()
	fmt.Println("Enemies:")
	for _, e := range cat.Enemies() {
		fmt.Printf("  %-14s  %-8s  hp %-3d armor %d  weapon %d/%d\n",
			e.ID, e.Role, e.HP, e.Armor, e.Weapon.Damage, e.Weapon.Range)
	}

	fmt.Println()
	fmt.Println("Squad:")
	for i, s := range cat.Squad {
		fmt.Printf("  drone-%d  %-10s  %s\n", i+1, s.Template, s.Pos)
	}

	l := cat.DefaultLoadout
	fmt.Println()
	fmt.Printf("Default loadout: %s / %s  modules %v  consumables %v\n",
		l.Primary, l.Secondary, l.Modules, l.Consumables)

	fmt.Println()
	fmt.Println("Rooms:")
	for _, r := range cat.Rooms() {
		fmt.Printf("  %s\n", r.ID)
	}
}
