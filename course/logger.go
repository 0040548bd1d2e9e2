package course

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "course")
