package hocon

import "os"

func osEnviron() []string {
	return os.Environ()
}
