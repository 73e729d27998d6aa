package version

// Version is the current roomlink version, shared by the server and the
// terminal client. Release builds override it with:
//   go build -ldflags="-X 'github.com/BioHazard786/roomlink/internal/version.Version=v1.0.0'"
var Version = "dev"
