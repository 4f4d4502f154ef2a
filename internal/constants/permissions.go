package constants

import "os"

// DirPermStandard — права директории логов (owner rwx, group r-x).
const DirPermStandard os.FileMode = 0750
