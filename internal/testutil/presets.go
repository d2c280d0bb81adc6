package testutil

// WithStandardCase adds the standard two-source case.
//
// Structure:
//
//	/laptop
//	  ├── docs
//	  │     ├── notes.txt
//	  │     └── readme.md
//	  ├── empty
//	  └── tool.bin
//	/usb
//	  └── photo.jpg
func (b *Builder) WithStandardCase() *Builder {
	return b.
		WithDataSource("laptop",
			File("docs/notes.txt", "meeting at 10\nbring the drive\n"),
			File("docs/readme.md", "# Readme\n\nSee *notes*.\n", MIME("text/markdown")),
			Dir("empty"),
			File("tool.bin", "", Data([]byte{0x7f, 'E', 'L', 'F', 0x00, 0x01}), MIME("application/octet-stream")),
		).
		WithDataSource("usb",
			File("photo.jpg", "", Data([]byte{0xff, 0xd8, 0xff, 0xe0}), MIME("image/jpeg")),
		)
}
