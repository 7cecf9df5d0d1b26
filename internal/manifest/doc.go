// Package manifest persists the record of songs already stored in a
// destination directory.
//
// The manifest maps each ISRC to the paths of the files stored for it and
// lives in a single JSON file, references.json, at the destination root:
//
//	{
//	  "A1": ["Sufjan Stevens/Illinois/Chicago.flac"],
//	  "B2": ["M83/Hurry Up Were Dreaming/Midnight City.flac"]
//	}
//
// # Loading and Saving
//
//	store := manifest.NewStore("/music")
//	m, err := store.Load() // empty manifest if references.json is absent
//	if err != nil {
//	    // *CorruptError: the file exists but cannot be parsed
//	}
//
//	m.Add("A1", "Sufjan Stevens/Illinois/Chicago.flac")
//	err = store.Save(m) // atomic: temp file + rename
//
// A Manifest is not safe for concurrent use; its owner serializes access.
package manifest
