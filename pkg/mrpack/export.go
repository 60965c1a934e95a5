package mrpack

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/invar-dev/invar/pkg/component"
	"github.com/invar-dev/invar/pkg/pack"
)

// overridesDir is where launcher-side copies of pack-shipped files live
// inside the archive.
const overridesDir = "overrides"

// Export writes the pack as an mrpack archive. Registry-hosted
// components are referenced in the index for the launcher to download;
// local components are copied from the repository into overrides/ at
// their runtime path.
func Export(w io.Writer, repo *pack.Repository) error {
	components, err := repo.Components()
	if err != nil {
		return err
	}

	index, err := BuildIndex(repo.Pack, components)
	if err != nil {
		return err
	}

	archive := zip.NewWriter(w)

	entry, err := archive.Create(IndexFileName)
	if err != nil {
		return fmt.Errorf("creating index entry: %w", err)
	}
	encoder := json.NewEncoder(entry)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(index); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}

	for _, c := range components {
		if c.Local == nil {
			continue
		}
		if err := addOverride(archive, repo.Root, c); err != nil {
			return err
		}
	}

	return archive.Close()
}

func addOverride(archive *zip.Writer, root string, c component.Component) error {
	source := filepath.Join(root, filepath.FromSlash(c.Local.Path))
	f, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("opening local component %s: %w", c.ID, err)
	}
	defer f.Close()

	entry, err := archive.Create(path.Join(overridesDir, c.RuntimePath()))
	if err != nil {
		return fmt.Errorf("creating override entry for %s: %w", c.ID, err)
	}
	if _, err := io.Copy(entry, f); err != nil {
		return fmt.Errorf("copying %s into archive: %w", c.ID, err)
	}
	return nil
}

// ArchiveName returns the conventional file name for an exported pack.
func ArchiveName(p *pack.Pack) string {
	return fmt.Sprintf("%s-%s.mrpack", p.Name, p.Version)
}
