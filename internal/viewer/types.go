package viewer

// View type tags understood by the built-in panels.
const (
	TypeMediaViewer             = "titled_media_viewer"
	TypeLauncher                = "launcher"
	TypeLauncherPersistent      = "launcher_persistent"
	TypeSearch                  = "search"
	TypeSelectMediaAmbient      = "select_media_ambient"
	TypeSelectMediaBackground   = "select_media_background"
	TypePresentationController  = "presentation_controller"
	TypeSettings                = "settings"
	TypeFullscreenController    = "fullscreen_controller"
	TypeDiagnostic              = "diagnostic"
	TypeStateViewer             = "state_viewer"
	TypeError                   = "error"
)

// IsLauncher reports whether tag is one of the launcher kinds.
func IsLauncher(tag string) bool {
	return tag == TypeLauncher || tag == TypeLauncherPersistent
}
