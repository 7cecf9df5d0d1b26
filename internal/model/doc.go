// Package model defines the core data structures used throughout
// the playlist downloader.
//
// # Song
//
// Song is one playlist entry. Its sanitized accessors give the
// filesystem-safe forms of its free-text fields:
//
//	song := &model.Song{Title: "Midnight City", Artist: "M83", Album: "Hurry Up, We're Dreaming", ISRC: "B2"}
//	song.AlbumFileName() // "Hurry Up Were Dreaming"
//
// # Playlist
//
// Playlist pairs a Summary with the ordered song list handed to the
// download manager.
//
// # Locators and Paths
//
// CatalogLocator and LibraryLayout are the default naming schemes:
//
//	url := model.CatalogLocator{}.Locate("http://dl.example", song)
//	// http://dl.example/artist/M83/song/Midnight City
//
//	path, _ := model.LibraryLayout{}.Path("/music", "flac", song)
//	// /music/M83/Hurry Up Were Dreaming/Midnight City.flac
package model
